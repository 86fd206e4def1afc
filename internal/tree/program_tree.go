package tree

import (
	"fmt"
	"sort"

	"github.com/emrgen/programtree/internal/prerequisite"
)

// PasteOptions tells where a node is attached and with which link attributes.
type PasteOptions struct {
	Path Path
	LinkAttributes
}

// ProgramTree is the aggregate of a root node and everything reachable from it.
type ProgramTree struct {
	Root                    *Node
	AuthorizedRelationships *AuthorizedRelationshipList
	Prerequisites           *Prerequisites

	// descendents caches Root.Descendents() until the next structural change.
	descendents  map[Path]*Node
	createdLinks []*Link
	deletedLinks []*Link
}

// New builds a tree around root. Sibling orders are restored from the links
// and the prerequisites are bound to the learning units of the tree.
func New(root *Node, relationships *AuthorizedRelationshipList, prerequisites *Prerequisites) *ProgramTree {
	t := &ProgramTree{
		Root:                    root,
		AuthorizedRelationships: relationships,
		Prerequisites:           prerequisites,
	}
	if t.Prerequisites == nil {
		t.Prerequisites = NewPrerequisites(t.Identity())
	}

	root.sortChildren()
	for node := range root.GetAllChildrenAsNodes(nil).Iter() {
		node.sortChildren()
	}
	t.refreshPrerequisites()
	return t
}

// Identity returns the identity of the root node.
func (t *ProgramTree) Identity() ProgramTreeIdentity {
	return ProgramTreeIdentity{Code: t.Root.Code, Year: t.Root.Year}
}

// Year is the academic year of the tree.
func (t *ProgramTree) Year() int {
	return t.Root.Year
}

// RootPath is the path of the root node.
func (t *ProgramTree) RootPath() Path {
	return BuildPath(t.Root)
}

func (t *ProgramTree) getDescendents() map[Path]*Node {
	if t.descendents == nil {
		t.descendents = t.Root.Descendents()
	}
	return t.descendents
}

func (t *ProgramTree) invalidate() {
	t.descendents = nil
}

// GetNode returns the node located at path.
func (t *ProgramTree) GetNode(path Path) (*Node, error) {
	if path == t.RootPath() {
		return t.Root, nil
	}
	if node, ok := t.getDescendents()[path]; ok {
		return node, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
}

// GetNodeByCodeAndYear returns the first node of the tree with the given identity.
func (t *ProgramTree) GetNodeByCodeAndYear(code string, year int) (*Node, error) {
	for _, node := range t.GetAllNodes() {
		if node.Code == code && node.Year == year {
			return node, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, NodeIdentity{Code: code, Year: year})
}

// Contains reports whether node belongs to the tree.
func (t *ProgramTree) Contains(node *Node) bool {
	return t.Root.Equal(node) || t.Root.Contains(node)
}

// PathsOfNode returns every path leading to node, sorted.
func (t *ProgramTree) PathsOfNode(node *Node) []Path {
	var paths []Path
	if t.Root.Equal(node) {
		paths = append(paths, t.RootPath())
	}
	for path, n := range t.getDescendents() {
		if n.Equal(node) {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// GetAllNodes returns the root and the nodes below it, restricted to types when
// given, sorted by code and year.
func (t *ProgramTree) GetAllNodes(types ...NodeType) []*Node {
	var nodes []*Node
	if len(types) == 0 || contains(types, t.Root.NodeType) {
		nodes = append(nodes, t.Root)
	}
	nodes = append(nodes, t.Root.GetAllChildrenAsNodes(types).ToSlice()...)
	sortNodes(nodes)
	return nodes
}

// GetAllLearningUnitNodes returns the learning units of the tree sorted by code.
func (t *ProgramTree) GetAllLearningUnitNodes() []*Node {
	return t.GetAllNodes(TypeLearningUnit)
}

// GetNodesThatHavePrerequisites returns the learning units carrying a prerequisite.
func (t *ProgramTree) GetNodesThatHavePrerequisites() []*Node {
	var nodes []*Node
	for _, node := range t.GetAllLearningUnitNodes() {
		if node.HasPrerequisite() {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// GetAllLinks returns every link of the tree.
func (t *ProgramTree) GetAllLinks() []*Link {
	links := t.Root.GetAllChildren().ToSlice()
	sortLinks(links)
	return links
}

// GetLink returns the link between parent and child, nil when absent.
func (t *ProgramTree) GetLink(parent, child *Node) *Link {
	return parent.GetChildLink(child.NodeID)
}

// GetLinkFromIdentity returns the link matching identity.
func (t *ProgramTree) GetLinkFromIdentity(identity LinkIdentity) (*Link, error) {
	for _, link := range t.GetAllLinks() {
		if link.Identity() == identity {
			return link, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, identity)
}

// GetLinksUsingNode returns the links whose child is node, sorted by parent.
func (t *ProgramTree) GetLinksUsingNode(node *Node) []*Link {
	var links []*Link
	for _, link := range t.GetAllLinks() {
		if link.Child.Equal(node) {
			links = append(links, link)
		}
	}
	return links
}

// GetFirstLinkOccurrenceUsingNode returns the first link whose child is node, nil when absent.
func (t *ProgramTree) GetFirstLinkOccurrenceUsingNode(node *Node) *Link {
	links := t.GetLinksUsingNode(node)
	if len(links) == 0 {
		return nil
	}
	return links[0]
}

// PasteNode attaches node under the node at opts.Path. The new link is the last sibling.
func (t *ProgramTree) PasteNode(node *Node, opts PasteOptions) (*Link, error) {
	parent, err := t.GetNode(opts.Path)
	if err != nil {
		return nil, err
	}
	if err := t.pasteValidators(opts.Path, parent, node, opts.LinkAttributes).Validate(); err != nil {
		return nil, err
	}

	link := parent.AddChild(node, opts.LinkAttributes)
	t.createdLinks = append(t.createdLinks, link)
	t.invalidate()
	t.refreshPrerequisites()
	return link, nil
}

// DetachNode removes the link ending at path. The warnings list the
// prerequisites dropped with the detached learning units.
func (t *ProgramTree) DetachNode(path Path) (*Link, *BusinessWarnings, error) {
	link, err := t.linkAt(path)
	if err != nil {
		return nil, nil, err
	}
	if err := t.detachValidators(link).Validate(); err != nil {
		return nil, nil, err
	}
	warnings := t.detachWarnings(link)

	parent := link.Parent
	parent.DetachChild(link.Child.NodeID)
	for _, sibling := range parent.Children {
		if sibling.Order > link.Order {
			sibling.OrderUp()
		}
	}
	t.recordDeleted(link)

	t.invalidate()
	t.removeOrphanPrerequisites()
	t.refreshPrerequisites()
	return link, warnings, nil
}

// UpdateLink replaces the attributes of the link matching identity.
func (t *ProgramTree) UpdateLink(identity LinkIdentity, attrs LinkAttributes) (*Link, error) {
	link, err := t.GetLinkFromIdentity(identity)
	if err != nil {
		return nil, err
	}
	if err := t.updateLinkValidators(link, attrs).Validate(); err != nil {
		return nil, err
	}
	link.Update(attrs)
	return link, nil
}

// OrderUp swaps the link ending at path with its previous sibling.
// The first sibling is left untouched.
func (t *ProgramTree) OrderUp(path Path) (*Link, error) {
	link, err := t.linkAt(path)
	if err != nil {
		return nil, err
	}
	siblings := link.Parent.Children
	idx := indexOf(siblings, link)
	if idx > 0 {
		previous := siblings[idx-1]
		link.SwapOrder(previous)
		siblings[idx-1], siblings[idx] = link, previous
		t.invalidate()
	}
	return link, nil
}

// OrderDown swaps the link ending at path with its next sibling.
// The last sibling is left untouched.
func (t *ProgramTree) OrderDown(path Path) (*Link, error) {
	link, err := t.linkAt(path)
	if err != nil {
		return nil, err
	}
	siblings := link.Parent.Children
	idx := indexOf(siblings, link)
	if idx >= 0 && idx < len(siblings)-1 {
		next := siblings[idx+1]
		link.SwapOrder(next)
		siblings[idx], siblings[idx+1] = next, link
		t.invalidate()
	}
	return link, nil
}

// SetPrerequisite parses expression and sets it on the learning unit at path.
// The empty expression removes the prerequisite.
func (t *ProgramTree) SetPrerequisite(path Path, expression string) (*prerequisite.Prerequisite, error) {
	node, err := t.GetNode(path)
	if err != nil {
		return nil, err
	}
	if !node.IsLearningUnit() {
		return nil, NewBusinessError("%s is not a learning unit: it cannot have prerequisites", node)
	}

	p, err := prerequisite.FromExpression(expression, node.Year)
	if err != nil {
		return nil, syntaxError(expression, err)
	}
	if err := t.prerequisiteValidators(node, p).Validate(); err != nil {
		return nil, err
	}

	t.Prerequisites.Set(node.Identity(), p)
	t.refreshPrerequisites()
	return p, nil
}

// CreatedLinks returns the links added since the load and still attached.
func (t *ProgramTree) CreatedLinks() []*Link {
	var links []*Link
	for _, link := range t.createdLinks {
		if link.Parent.GetChildLink(link.Child.NodeID) == link {
			links = append(links, link)
		}
	}
	return links
}

// DeletedLinks returns the stored links detached since the load.
func (t *ProgramTree) DeletedLinks() []*Link {
	return t.deletedLinks
}

// ChangedLinks returns the stored links whose attributes or order changed.
func (t *ProgramTree) ChangedLinks() []*Link {
	var links []*Link
	for _, link := range t.GetAllLinks() {
		if link.PK != 0 && link.hasChanged {
			links = append(links, link)
		}
	}
	return links
}

// ChangedPrerequisites returns the prerequisites set or removed since the load.
func (t *ProgramTree) ChangedPrerequisites() []*NodePrerequisite {
	return t.Prerequisites.Changed()
}

// ClearChanges forgets the session changes once they are persisted.
func (t *ProgramTree) ClearChanges() {
	for _, link := range t.GetAllLinks() {
		link.hasChanged = false
	}
	t.createdLinks = nil
	t.deletedLinks = nil
	t.Prerequisites.clearChanges()
}

func (t *ProgramTree) linkAt(path Path) (*Link, error) {
	childID, err := path.Last()
	if err != nil {
		return nil, err
	}
	parent, err := t.GetNode(path.Parent())
	if err != nil {
		return nil, err
	}
	link := parent.GetChildLink(childID)
	if link == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return link, nil
}

func (t *ProgramTree) recordDeleted(link *Link) {
	for i, created := range t.createdLinks {
		if created == link {
			t.createdLinks = append(t.createdLinks[:i:i], t.createdLinks[i+1:]...)
			return
		}
	}
	if link.PK != 0 {
		t.deletedLinks = append(t.deletedLinks, link)
	}
}

// nodesWithout returns the nodes reachable from the root without walking skip.
func (t *ProgramTree) nodesWithout(skip *Link) map[int]*Node {
	nodes := map[int]*Node{t.Root.NodeID: t.Root}
	visited := make(map[*Link]struct{})

	var walk func(n *Node)
	walk = func(n *Node) {
		for _, link := range n.Children {
			if link == skip {
				continue
			}
			if _, ok := visited[link]; ok {
				continue
			}
			visited[link] = struct{}{}
			nodes[link.Child.NodeID] = link.Child
			walk(link.Child)
		}
	}
	walk(t.Root)
	return nodes
}

func (t *ProgramTree) removeOrphanPrerequisites() {
	present := make(map[NodeIdentity]struct{})
	for _, node := range t.GetAllLearningUnitNodes() {
		present[node.Identity()] = struct{}{}
	}
	for _, item := range t.Prerequisites.All() {
		if _, ok := present[item.Node]; !ok {
			t.Prerequisites.Remove(item.Node)
		}
	}
}

// refreshPrerequisites binds the collection to the learning units and rebuilds
// the IsPrerequisiteOf back references.
func (t *ProgramTree) refreshPrerequisites() {
	units := t.GetAllLearningUnitNodes()
	byCode := make(map[string][]*Node, len(units))
	for _, unit := range units {
		unit.LearningUnit.Prerequisite = t.Prerequisites.Get(unit.Identity())
		unit.LearningUnit.IsPrerequisiteOf = nil
		byCode[unit.Code] = append(byCode[unit.Code], unit)
	}
	for _, unit := range units {
		for _, code := range unit.LearningUnit.Prerequisite.Codes() {
			for _, required := range byCode[code] {
				required.LearningUnit.IsPrerequisiteOf = append(required.LearningUnit.IsPrerequisiteOf, unit)
			}
		}
	}
}

func indexOf(links []*Link, link *Link) int {
	for i, l := range links {
		if l == link {
			return i
		}
	}
	return -1
}

func contains(types []NodeType, nodeType NodeType) bool {
	for _, t := range types {
		if t == nodeType {
			return true
		}
	}
	return false
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Code != nodes[j].Code {
			return nodes[i].Code < nodes[j].Code
		}
		if nodes[i].Year != nodes[j].Year {
			return nodes[i].Year < nodes[j].Year
		}
		return nodes[i].NodeID < nodes[j].NodeID
	})
}

func sortLinks(links []*Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].Parent.Code != links[j].Parent.Code {
			return links[i].Parent.Code < links[j].Parent.Code
		}
		if links[i].Order != links[j].Order {
			return links[i].Order < links[j].Order
		}
		return links[i].Child.Code < links[j].Child.Code
	})
}
