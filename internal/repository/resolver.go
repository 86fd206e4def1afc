package repository

import (
	"context"
	"errors"

	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
)

var _ tree.NodeResolver = (*NextYearResolver)(nil)

// NextYearResolver looks up and creates the nodes of the following year in storage.
type NextYearResolver struct {
	store store.Store
	nodes *NodeRepository
}

func NewNextYearResolver(store store.Store) *NextYearResolver {
	return &NextYearResolver{store: store, nodes: NewNodeRepository(store)}
}

func (r *NextYearResolver) NextYearNode(ctx context.Context, node *tree.Node) (*tree.Node, error) {
	identity := tree.NodeIdentity{Code: node.Code, Year: node.Year + 1}

	var next *tree.Node
	var err error
	if node.IsLearningUnit() {
		element, e := r.store.GetLearningUnitElement(ctx, identity.Code, identity.Year)
		if e == nil {
			next = nodeFromElement(element)
		}
		err = e
	} else {
		element, e := r.store.GetGroupElement(ctx, identity.Code, identity.Year)
		if e == nil {
			next = nodeFromElement(element)
		}
		err = e
	}

	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return next, err
}

func (r *NextYearResolver) CreateNextYearNode(ctx context.Context, node *tree.Node) (*tree.Node, error) {
	next := *node
	next.NodeID = 0
	next.Year = node.Year + 1
	next.Children = nil
	if node.Group != nil {
		group := *node.Group
		next.Group = &group
	}
	created := tree.NewNode(node.Kind, next)

	if err := r.nodes.CreateGroup(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *NextYearResolver) HasContent(ctx context.Context, node *tree.Node) (bool, error) {
	count, err := r.store.CountChildren(ctx, node.NodeID)
	return count > 0, err
}
