package store

import (
	"context"

	"github.com/emrgen/programtree/internal/model"
)

type Store interface {
	ElementStore
	LinkStore
	PrerequisiteStore
	RelationshipStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ElementStore interface {
	// GetGroupElement retrieves the element of a group by code and year.
	GetGroupElement(ctx context.Context, code string, year int) (*model.Element, error)
	// GetLearningUnitElement retrieves the element of a learning unit by code and year.
	GetLearningUnitElement(ctx context.Context, code string, year int) (*model.Element, error)
	// GetNextLearningUnitElement retrieves the first learning unit element with the code after year.
	GetNextLearningUnitElement(ctx context.Context, code string, year int) (*model.Element, error)
	// ListElements retrieves elements by ids with their year rows.
	ListElements(ctx context.Context, ids []int) ([]*model.Element, error)
	// ListElementsByYear retrieves the group and learning unit elements of a year.
	ListElementsByYear(ctx context.Context, year int) ([]*model.Element, error)
	// ListGroupElementsByCode retrieves the elements of a group for every year.
	ListGroupElementsByCode(ctx context.Context, code string) ([]*model.Element, error)
	// ListGroupElementsByType retrieves the group elements of a year having one of the types.
	ListGroupElementsByType(ctx context.Context, year int, nodeTypes []string) ([]*model.Element, error)
	// CreateGroupElement creates a group year and its element.
	CreateGroupElement(ctx context.Context, group *model.GroupYear) (*model.Element, error)
	// CreateLearningUnitElement creates a learning unit year and its element.
	CreateLearningUnitElement(ctx context.Context, unit *model.LearningUnitYear) (*model.Element, error)
	// CreateLearningClassElement creates a learning class year and its element.
	CreateLearningClassElement(ctx context.Context, class *model.LearningClassYear) (*model.Element, error)
	// DeleteGroupElements deletes group elements and their group years.
	DeleteGroupElements(ctx context.Context, ids []int) error
}

type LinkStore interface {
	// GetAdjacencyList walks the links below the roots down to maxDepth levels.
	GetAdjacencyList(ctx context.Context, rootIDs []int, maxDepth int) ([]*model.AdjacencyRow, error)
	// GetReverseAdjacencyList walks the links above the children up to maxDepth levels.
	GetReverseAdjacencyList(ctx context.Context, childIDs []int, maxDepth int) ([]*model.AdjacencyRow, error)
	// ListLinks retrieves links by ids.
	ListLinks(ctx context.Context, ids []int) ([]*model.GroupElementYear, error)
	// ListParentLinks retrieves the links whose child is one of the elements.
	ListParentLinks(ctx context.Context, childIDs []int) ([]*model.GroupElementYear, error)
	// CountChildren counts the links below an element.
	CountChildren(ctx context.Context, parentID int) (int64, error)
	// CreateLinks creates links, filling their ids.
	CreateLinks(ctx context.Context, links []*model.GroupElementYear) error
	// UpdateLinks writes every attribute of the links.
	UpdateLinks(ctx context.Context, links []*model.GroupElementYear) error
	// DeleteLinks deletes links by ids.
	DeleteLinks(ctx context.Context, ids []int) error
	// DeleteLinksOfParents deletes every link below the elements.
	DeleteLinksOfParents(ctx context.Context, parentIDs []int) error
}

type PrerequisiteStore interface {
	// ListPrerequisites retrieves the prerequisites defined in the context of a root element.
	ListPrerequisites(ctx context.Context, rootElementID int) ([]*model.Prerequisite, error)
	// SavePrerequisite replaces the prerequisite of a learning unit in the context of a root element.
	SavePrerequisite(ctx context.Context, prerequisite *model.Prerequisite) error
	// DeletePrerequisite removes the prerequisite of a learning unit in the context of a root element.
	DeletePrerequisite(ctx context.Context, rootElementID, learningUnitElementID int) error
	// DeletePrerequisitesOfRoot removes every prerequisite defined in the context of a root element.
	DeletePrerequisitesOfRoot(ctx context.Context, rootElementID int) error
}

type RelationshipStore interface {
	// ListAuthorizedRelationships retrieves the parent/child type policy.
	ListAuthorizedRelationships(ctx context.Context) ([]*model.AuthorizedRelationship, error)
	// SaveAuthorizedRelationships creates or updates relationships by parent and child type.
	SaveAuthorizedRelationships(ctx context.Context, relationships []*model.AuthorizedRelationship) error
}
