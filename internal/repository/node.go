package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/emrgen/programtree/internal/model"
	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
)

// NodeRepository loads and creates single nodes, without their children.
type NodeRepository struct {
	store store.Store
}

func NewNodeRepository(store store.Store) *NodeRepository {
	return &NodeRepository{store: store}
}

// Get returns the group or learning unit identified by code and year.
func (r *NodeRepository) Get(ctx context.Context, identity tree.NodeIdentity) (*tree.Node, error) {
	element, err := r.store.GetGroupElement(ctx, identity.Code, identity.Year)
	if errors.Is(err, store.ErrNotFound) {
		element, err = r.store.GetLearningUnitElement(ctx, identity.Code, identity.Year)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", tree.ErrNodeNotFound, identity)
	}
	if err != nil {
		return nil, err
	}
	return nodeFromElement(element), nil
}

// Search returns the nodes matching the identities. Unknown identities are skipped.
func (r *NodeRepository) Search(ctx context.Context, identities []tree.NodeIdentity) ([]*tree.Node, error) {
	nodes := make([]*tree.Node, 0, len(identities))
	for _, identity := range identities {
		node, err := r.Get(ctx, identity)
		if errors.Is(err, tree.ErrNodeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// SearchByYear returns the groups and learning units of an academic year.
func (r *NodeRepository) SearchByYear(ctx context.Context, year int) ([]*tree.Node, error) {
	elements, err := r.store.ListElementsByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return nodesFromElements(elements), nil
}

// SearchRoots returns the trainings and mini trainings of a year.
func (r *NodeRepository) SearchRoots(ctx context.Context, year int) ([]*tree.Node, error) {
	var nodeTypes []string
	for _, nodeType := range tree.RootNodeTypes() {
		nodeTypes = append(nodeTypes, string(nodeType))
	}
	elements, err := r.store.ListGroupElementsByType(ctx, year, nodeTypes)
	if err != nil {
		return nil, err
	}
	return nodesFromElements(elements), nil
}

// GetNextLearningUnitYearNode returns the first version of the learning unit after the given year.
func (r *NodeRepository) GetNextLearningUnitYearNode(ctx context.Context, identity tree.NodeIdentity) (*tree.Node, error) {
	element, err := r.store.GetNextLearningUnitElement(ctx, identity.Code, identity.Year)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: no learning unit %s after %d", tree.ErrNodeNotFound, identity.Code, identity.Year)
	}
	if err != nil {
		return nil, err
	}
	return nodeFromElement(element), nil
}

// CreateGroup stores a training, mini training or group and sets its NodeID.
func (r *NodeRepository) CreateGroup(ctx context.Context, node *tree.Node) error {
	if !node.IsGroupOrMiniOrTraining() {
		return fmt.Errorf("%s is not a group", node)
	}
	element, err := r.store.CreateGroupElement(ctx, groupYearFromNode(node))
	if err != nil {
		return err
	}
	node.NodeID = element.ID
	return nil
}

// CreateLearningUnit stores a learning unit and sets its NodeID.
func (r *NodeRepository) CreateLearningUnit(ctx context.Context, node *tree.Node) error {
	if !node.IsLearningUnit() {
		return fmt.Errorf("%s is not a learning unit", node)
	}
	element, err := r.store.CreateLearningUnitElement(ctx, learningUnitYearFromNode(node))
	if err != nil {
		return err
	}
	node.NodeID = element.ID
	return nil
}

// CreateLearningClass stores a class of unit and sets its NodeID.
func (r *NodeRepository) CreateLearningClass(ctx context.Context, node, unit *tree.Node) error {
	unitElement, err := r.store.GetLearningUnitElement(ctx, unit.Code, unit.Year)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", tree.ErrNodeNotFound, unit)
	}
	if err != nil {
		return err
	}

	element, err := r.store.CreateLearningClassElement(ctx, &model.LearningClassYear{
		Code:               node.Code,
		Year:               node.Year,
		Title:              node.Title,
		LearningUnitYearID: *unitElement.LearningUnitYearID,
	})
	if err != nil {
		return err
	}
	node.NodeID = element.ID
	return nil
}

func nodesFromElements(elements []*model.Element) []*tree.Node {
	nodes := make([]*tree.Node, 0, len(elements))
	for _, element := range elements {
		if node := nodeFromElement(element); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}
