package repository

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/programtree/internal/model"
	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds the recursive walk of the links below a root.
const DefaultMaxDepth = 10

// MaxDepth is the depth used by new repositories. The server sets it from the config at startup.
var MaxDepth = DefaultMaxDepth

// ErrTreeTooDeep is returned instead of a tree truncated at the maximum depth.
var ErrTreeTooDeep = errors.New("program tree deeper than the maximum depth")

// ProgramTreeRepository loads and persists whole program trees.
type ProgramTreeRepository struct {
	store    store.Store
	maxDepth int
}

func NewProgramTreeRepository(store store.Store) *ProgramTreeRepository {
	return &ProgramTreeRepository{store: store, maxDepth: MaxDepth}
}

// in returns a repository on tx with the same settings.
func (r *ProgramTreeRepository) in(tx store.Store) *ProgramTreeRepository {
	return &ProgramTreeRepository{store: tx, maxDepth: r.maxDepth}
}

// Get loads the tree rooted at the group identified by code and year.
func (r *ProgramTreeRepository) Get(ctx context.Context, identity tree.ProgramTreeIdentity) (*tree.ProgramTree, error) {
	root, err := r.store.GetGroupElement(ctx, identity.Code, identity.Year)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", tree.ErrProgramTreeNotFound, identity)
	}
	if err != nil {
		return nil, err
	}
	return r.load(ctx, root)
}

// GetNode returns the group or learning unit identified by code and year. A
// group comes with its whole subtree.
func (r *ProgramTreeRepository) GetNode(ctx context.Context, identity tree.NodeIdentity) (*tree.Node, error) {
	element, err := r.store.GetGroupElement(ctx, identity.Code, identity.Year)
	if errors.Is(err, store.ErrNotFound) {
		return NewNodeRepository(r.store).Get(ctx, identity)
	}
	if err != nil {
		return nil, err
	}
	t, err := r.load(ctx, element)
	if err != nil {
		return nil, err
	}
	return t.Root, nil
}

func (r *ProgramTreeRepository) load(ctx context.Context, rootElement *model.Element) (*tree.ProgramTree, error) {
	rows, err := r.store.GetAdjacencyList(ctx, []int{rootElement.ID}, r.maxDepth)
	if err != nil {
		return nil, err
	}
	if err := r.checkDepth(ctx, rootElement, rows); err != nil {
		return nil, err
	}

	// the same link shows up once per path leading to its parent
	linkIDs := mapset.NewThreadUnsafeSet[int]()
	elementIDs := mapset.NewThreadUnsafeSet[int]()
	for _, row := range rows {
		linkIDs.Add(row.ID)
		elementIDs.Add(row.ChildElementID)
	}
	elementIDs.Remove(rootElement.ID)

	elements, err := r.store.ListElements(ctx, elementIDs.ToSlice())
	if err != nil {
		return nil, err
	}
	root := nodeFromElement(rootElement)
	nodes := map[int]*tree.Node{root.NodeID: root}
	for _, element := range elements {
		nodes[element.ID] = nodeFromElement(element)
	}

	links, err := r.store.ListLinks(ctx, linkIDs.ToSlice())
	if err != nil {
		return nil, err
	}
	for _, row := range links {
		parent, ok := nodes[row.ParentElementID]
		if !ok {
			return nil, fmt.Errorf("link %d: parent element %d not loaded", row.ID, row.ParentElementID)
		}
		child, ok := nodes[row.ChildElementID]
		if !ok {
			return nil, fmt.Errorf("link %d: child element %d not loaded", row.ID, row.ChildElementID)
		}
		link := parent.AddChild(child, linkAttributes(row))
		link.PK = row.ID
		link.Order = row.OrderNum
	}

	prerequisites, err := r.loadPrerequisites(ctx, root, nodes)
	if err != nil {
		return nil, err
	}

	relationships, err := r.store.ListAuthorizedRelationships(ctx)
	if err != nil {
		return nil, err
	}

	return tree.New(root, relationshipsFromModel(relationships), prerequisites), nil
}

// checkDepth fails when an element of the deepest level walked still has
// children. Stored cycles end up here too.
func (r *ProgramTreeRepository) checkDepth(ctx context.Context, rootElement *model.Element, rows []*model.AdjacencyRow) error {
	checked := mapset.NewThreadUnsafeSet[int]()
	for _, row := range rows {
		if row.Level < r.maxDepth || !checked.Add(row.ChildElementID) {
			continue
		}
		count, err := r.store.CountChildren(ctx, row.ChildElementID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: element %d has links below level %d (root element %d)",
				ErrTreeTooDeep, row.ChildElementID, r.maxDepth, rootElement.ID)
		}
	}
	return nil
}

func (r *ProgramTreeRepository) loadPrerequisites(ctx context.Context, root *tree.Node, nodes map[int]*tree.Node) (*tree.Prerequisites, error) {
	contextTree := tree.ProgramTreeIdentity{Code: root.Code, Year: root.Year}

	rows, err := r.store.ListPrerequisites(ctx, root.NodeID)
	if err != nil {
		return nil, err
	}

	var missing []int
	for _, row := range rows {
		if _, ok := nodes[row.LearningUnitElementID]; !ok {
			missing = append(missing, row.LearningUnitElementID)
		}
	}
	// units detached by another session keep their stored prerequisite until the next write
	others := make(map[int]*tree.Node)
	if len(missing) > 0 {
		elements, err := r.store.ListElements(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, element := range elements {
			others[element.ID] = nodeFromElement(element)
		}
	}

	items := make([]*tree.NodePrerequisite, 0, len(rows))
	for _, row := range rows {
		unit, ok := nodes[row.LearningUnitElementID]
		if !ok {
			unit, ok = others[row.LearningUnitElementID]
		}
		if !ok {
			logrus.Warnf("prerequisite %d references unknown element %d", row.ID, row.LearningUnitElementID)
			continue
		}
		items = append(items, &tree.NodePrerequisite{
			Node:         unit.Identity(),
			Prerequisite: prerequisiteFromModel(row),
		})
	}
	return tree.NewPrerequisites(contextTree, items...), nil
}

// Search loads the trees of every year rooted at the group code.
func (r *ProgramTreeRepository) Search(ctx context.Context, code string) ([]*tree.ProgramTree, error) {
	elements, err := r.store.ListGroupElementsByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	trees := make([]*tree.ProgramTree, 0, len(elements))
	for _, element := range elements {
		t, err := r.load(ctx, element)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}

// SearchFromChildren loads the trees of the trainings and mini trainings using one of the nodes.
func (r *ProgramTreeRepository) SearchFromChildren(ctx context.Context, children []tree.NodeIdentity) ([]*tree.ProgramTree, error) {
	nodes, err := NewNodeRepository(r.store).Search(ctx, children)
	if err != nil {
		return nil, err
	}
	childIDs := make([]int, 0, len(nodes))
	for _, node := range nodes {
		childIDs = append(childIDs, node.NodeID)
	}

	rows, err := r.store.GetReverseAdjacencyList(ctx, childIDs, r.maxDepth)
	if err != nil {
		return nil, err
	}
	parentIDs := mapset.NewThreadUnsafeSet[int]()
	for _, row := range rows {
		parentIDs.Add(row.ParentElementID)
	}
	for _, node := range nodes {
		if node.IsTraining() || node.IsMiniTraining() {
			parentIDs.Add(node.NodeID)
		}
	}

	elements, err := r.store.ListElements(ctx, parentIDs.ToSlice())
	if err != nil {
		return nil, err
	}

	var trees []*tree.ProgramTree
	for _, element := range elements {
		node := nodeFromElement(element)
		if node == nil || !(node.IsTraining() || node.IsMiniTraining()) {
			continue
		}
		t, err := r.load(ctx, element)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}

// Create stores a new tree: its root when it has no NodeID yet, every link
// without a primary key and the prerequisites.
func (r *ProgramTreeRepository) Create(ctx context.Context, t *tree.ProgramTree) error {
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		if t.Root.NodeID == 0 {
			if err := NewNodeRepository(tx).CreateGroup(ctx, t.Root); err != nil {
				return err
			}
		}

		var created []*tree.Link
		for _, link := range t.GetAllLinks() {
			if link.PK == 0 {
				created = append(created, link)
			}
		}
		if err := createLinks(ctx, tx, created); err != nil {
			return err
		}

		for _, item := range t.Prerequisites.All() {
			if err := savePrerequisite(ctx, tx, t, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	t.ClearChanges()
	return nil
}

// Update writes back the changes recorded by the tree since it was loaded.
func (r *ProgramTreeRepository) Update(ctx context.Context, t *tree.ProgramTree) error {
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var deleted []int
		for _, link := range t.DeletedLinks() {
			deleted = append(deleted, link.PK)
		}
		if err := tx.DeleteLinks(ctx, deleted); err != nil {
			return err
		}

		if err := createLinks(ctx, tx, t.CreatedLinks()); err != nil {
			return err
		}

		changed := t.ChangedLinks()
		if len(changed) > 0 {
			rows := make([]*model.GroupElementYear, 0, len(changed))
			for _, link := range changed {
				rows = append(rows, linkModel(link))
			}
			if err := tx.UpdateLinks(ctx, rows); err != nil {
				return err
			}
		}

		for _, item := range t.ChangedPrerequisites() {
			if err := savePrerequisite(ctx, tx, t, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.Infof("program tree %s updated", t.Identity())
	t.ClearChanges()
	return nil
}

// Delete removes the links of the tree and the groups only used by it. The
// learning units and the trainings or mini trainings below the root are kept.
func (r *ProgramTreeRepository) Delete(ctx context.Context, identity tree.ProgramTreeIdentity) error {
	return r.store.Transaction(ctx, func(tx store.Store) error {
		t, err := r.in(tx).Get(ctx, identity)
		if err != nil {
			return err
		}

		parents, err := tx.ListParentLinks(ctx, []int{t.Root.NodeID})
		if err != nil {
			return err
		}
		if len(parents) > 0 {
			return tree.NewBusinessError("Cannot delete %s: it is used in %d other programs", identity, len(parents))
		}

		owned, err := ownedGroups(ctx, tx, t)
		if err != nil {
			return err
		}
		ids := owned.ToSlice()

		logrus.Infof("deleting program tree %s and %d owned groups", identity, len(ids)-1)
		if err := tx.DeleteLinksOfParents(ctx, ids); err != nil {
			return err
		}
		if err := tx.DeletePrerequisitesOfRoot(ctx, t.Root.NodeID); err != nil {
			return err
		}
		return tx.DeleteGroupElements(ctx, ids)
	})
}

// ownedGroups returns the root and the groups of the tree that no node outside
// of the set links to. The set shrinks until every member is only used inside it.
func ownedGroups(ctx context.Context, tx store.Store, t *tree.ProgramTree) (mapset.Set[int], error) {
	owned := mapset.NewThreadUnsafeSet(t.Root.NodeID)
	var candidates []int
	for _, node := range t.GetAllNodes() {
		if node.IsGroup() {
			owned.Add(node.NodeID)
			candidates = append(candidates, node.NodeID)
		}
	}

	parents, err := tx.ListParentLinks(ctx, candidates)
	if err != nil {
		return nil, err
	}

	for changed := true; changed; {
		changed = false
		for _, link := range parents {
			if owned.Contains(link.ChildElementID) && !owned.Contains(link.ParentElementID) {
				owned.Remove(link.ChildElementID)
				changed = true
			}
		}
	}
	return owned, nil
}

func createLinks(ctx context.Context, tx store.Store, links []*tree.Link) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]*model.GroupElementYear, 0, len(links))
	for _, link := range links {
		if link.Parent.NodeID == 0 || link.Child.NodeID == 0 {
			return fmt.Errorf("cannot store link %s: node not stored", link)
		}
		rows = append(rows, linkModel(link))
	}
	if err := tx.CreateLinks(ctx, rows); err != nil {
		return err
	}
	for i, link := range links {
		link.PK = rows[i].ID
	}
	return nil
}

func savePrerequisite(ctx context.Context, tx store.Store, t *tree.ProgramTree, item *tree.NodePrerequisite) error {
	unitID := 0
	if unit, err := t.GetNodeByCodeAndYear(item.Node.Code, item.Node.Year); err == nil {
		unitID = unit.NodeID
	} else {
		element, err := tx.GetLearningUnitElement(ctx, item.Node.Code, item.Node.Year)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", tree.ErrNodeNotFound, item.Node)
		}
		if err != nil {
			return err
		}
		unitID = element.ID
	}

	if item.Prerequisite.IsNull() {
		return tx.DeletePrerequisite(ctx, t.Root.NodeID, unitID)
	}
	return tx.SavePrerequisite(ctx, prerequisiteModel(t.Root.NodeID, unitID, item.Prerequisite))
}
