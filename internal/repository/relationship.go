package repository

import (
	"context"

	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
)

// RelationshipRepository reads and writes the authorized parent/child types.
type RelationshipRepository struct {
	store store.Store
}

func NewRelationshipRepository(store store.Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

func (r *RelationshipRepository) Get(ctx context.Context) (*tree.AuthorizedRelationshipList, error) {
	rows, err := r.store.ListAuthorizedRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return relationshipsFromModel(rows), nil
}

// Save creates the relationships or updates their counts.
func (r *RelationshipRepository) Save(ctx context.Context, relationships *tree.AuthorizedRelationshipList) error {
	return r.store.SaveAuthorizedRelationships(ctx, relationshipModels(relationships))
}
