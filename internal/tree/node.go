package tree

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/programtree/internal/prerequisite"
)

// ConstraintType tells how the min/max constraint of a group is expressed.
type ConstraintType string

const (
	ConstraintCredits       ConstraintType = "CREDITS"
	ConstraintNumberOfItems ConstraintType = "NUMBER_OF_ELEMENTS"
)

// GroupData holds the attributes specific to groups, trainings and mini trainings.
type GroupData struct {
	ConstraintType ConstraintType
	MinConstraint  *int
	MaxConstraint  *int
	RemarkFr       string
	RemarkEn       string
}

// LearningUnitData holds the attributes specific to learning units.
type LearningUnitData struct {
	Status      bool
	Periodicity string

	// Prerequisite is the expression attached to the unit in the context of the loaded tree.
	Prerequisite *prerequisite.Prerequisite
	// IsPrerequisiteOf lists the units of the loaded tree referencing this one.
	IsPrerequisiteOf []*Node
}

// Node is a vertex of a program tree. The variant data matching Kind is set by NewNode.
type Node struct {
	NodeID       int
	Kind         Kind
	NodeType     NodeType
	Code         string
	Title        string
	Year         int
	EndYear      *int
	ProposalType string
	Credits      *float64

	Children []*Link

	Group        *GroupData
	LearningUnit *LearningUnitData
}

// NewNode creates a node of the given kind from base, making sure the variant
// data of the kind is present and the others are absent.
func NewNode(kind Kind, base Node) *Node {
	n := base
	n.Kind = kind

	switch kind {
	case KindGroup, KindEducationGroup:
		if n.Group == nil {
			n.Group = &GroupData{}
		}
		n.LearningUnit = nil
	case KindLearningUnit:
		if n.LearningUnit == nil {
			n.LearningUnit = &LearningUnitData{}
		}
		if n.LearningUnit.Prerequisite == nil {
			n.LearningUnit.Prerequisite = prerequisite.Null()
		}
		n.NodeType = TypeLearningUnit
		n.Group = nil
	case KindLearningClass:
		n.NodeType = TypeLearningClass
		n.Group = nil
		n.LearningUnit = nil
	}

	return &n
}

// NewNodeOfType creates a node whose kind is deduced from its type.
func NewNodeOfType(nodeType NodeType, base Node) *Node {
	base.NodeType = nodeType
	return NewNode(KindOf(nodeType), base)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%d)", n.Code, n.Year)
}

// Identity returns the business identity of the node.
func (n *Node) Identity() NodeIdentity {
	return NodeIdentity{Code: n.Code, Year: n.Year}
}

// Equal reports whether n and other are the same stored element.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.NodeID == other.NodeID
}

func (n *Node) IsLearningUnit() bool {
	return n.Kind == KindLearningUnit
}

func (n *Node) IsLearningClass() bool {
	return n.Kind == KindLearningClass
}

func (n *Node) IsGroup() bool {
	return n.NodeType.Category() == CategoryGroup
}

func (n *Node) IsTraining() bool {
	return n.NodeType.Category() == CategoryTraining
}

func (n *Node) IsMiniTraining() bool {
	return n.NodeType.Category() == CategoryMiniTraining
}

func (n *Node) IsGroupOrMiniOrTraining() bool {
	return n.Kind == KindGroup || n.Kind == KindEducationGroup
}

func (n *Node) IsFinality() bool {
	return n.NodeType.IsFinality()
}

func (n *Node) IsMaster2M() bool {
	return n.NodeType.IsRootMaster2M()
}

// HasProposal reports whether the learning unit is under a proposal.
func (n *Node) HasProposal() bool {
	return n.ProposalType != ""
}

// IsClosedBefore reports whether the node ends before year.
func (n *Node) IsClosedBefore(year int) bool {
	return n.EndYear != nil && *n.EndYear < year
}

// HasPrerequisite reports whether a learning unit carries a non null prerequisite.
func (n *Node) HasPrerequisite() bool {
	return n.IsLearningUnit() && !n.LearningUnit.Prerequisite.IsNull()
}

// IsPrerequisite reports whether a learning unit is referenced by another unit's prerequisite.
func (n *Node) IsPrerequisite() bool {
	return n.IsLearningUnit() && len(n.LearningUnit.IsPrerequisiteOf) > 0
}

// GetPrerequisite returns the prerequisite of a learning unit, the null one otherwise.
func (n *Node) GetPrerequisite() *prerequisite.Prerequisite {
	if !n.IsLearningUnit() || n.LearningUnit.Prerequisite == nil {
		return prerequisite.Null()
	}
	return n.LearningUnit.Prerequisite
}

// GetIsPrerequisiteOf returns the units referencing n, sorted by code.
func (n *Node) GetIsPrerequisiteOf() []*Node {
	if !n.IsLearningUnit() {
		return nil
	}
	nodes := append([]*Node(nil), n.LearningUnit.IsPrerequisiteOf...)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Code < nodes[j].Code
	})
	return nodes
}

// AddChild links node under n and returns the new link. Orders start at zero.
func (n *Node) AddChild(node *Node, attrs LinkAttributes) *Link {
	link := &Link{
		Parent:         n,
		Child:          node,
		LinkAttributes: attrs,
		Order:          len(n.Children),
	}
	n.Children = append(n.Children, link)
	return link
}

// DetachChild removes the link to the child with the given id and returns it,
// or nil when no such child exists.
func (n *Node) DetachChild(nodeID int) *Link {
	for i, link := range n.Children {
		if link.Child.NodeID == nodeID {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			return link
		}
	}
	return nil
}

// GetChildLink returns the direct link from n to the child with the given id.
func (n *Node) GetChildLink(nodeID int) *Link {
	for _, link := range n.Children {
		if link.Child.NodeID == nodeID {
			return link
		}
	}
	return nil
}

// ChildrenAsNodes returns the direct children in order.
func (n *Node) ChildrenAsNodes() []*Node {
	nodes := make([]*Node, 0, len(n.Children))
	for _, link := range n.Children {
		nodes = append(nodes, link.Child)
	}
	return nodes
}

// GetChildrenTypes returns the types of the direct children, one entry per child.
// With includeReferenced, reference links contribute the types of the referenced node's children.
func (n *Node) GetChildrenTypes(includeReferenced bool) []NodeType {
	var types []NodeType
	for _, link := range n.Children {
		if includeReferenced && link.IsReference() {
			types = append(types, link.Child.GetChildrenTypes(true)...)
			continue
		}
		types = append(types, link.Child.NodeType)
	}
	return types
}

// GetAllChildren collects every link below n. Links to nodes whose type is in
// ignoreChildrenFrom are kept but not expanded.
func (n *Node) GetAllChildren(ignoreChildrenFrom ...NodeType) mapset.Set[*Link] {
	ignore := mapset.NewThreadUnsafeSet(ignoreChildrenFrom...)
	links := mapset.NewThreadUnsafeSet[*Link]()
	n.collectLinks(ignore, links)
	return links
}

func (n *Node) collectLinks(ignore mapset.Set[NodeType], links mapset.Set[*Link]) {
	for _, link := range n.Children {
		if !links.Add(link) || ignore.Contains(link.Child.NodeType) {
			continue
		}
		link.Child.collectLinks(ignore, links)
	}
}

// GetAllChildrenAsNodes collects every node below n, restricted to takeOnly types when given.
func (n *Node) GetAllChildrenAsNodes(takeOnly []NodeType, ignoreChildrenFrom ...NodeType) mapset.Set[*Node] {
	only := mapset.NewThreadUnsafeSet(takeOnly...)
	seen := make(map[int]struct{})
	nodes := mapset.NewThreadUnsafeSet[*Node]()
	for link := range n.GetAllChildren(ignoreChildrenFrom...).Iter() {
		child := link.Child
		if only.Cardinality() > 0 && !only.Contains(child.NodeType) {
			continue
		}
		if _, ok := seen[child.NodeID]; ok {
			continue
		}
		seen[child.NodeID] = struct{}{}
		nodes.Add(child)
	}
	return nodes
}

// Contains reports whether other appears below n.
func (n *Node) Contains(other *Node) bool {
	for _, link := range n.Children {
		if link.Child.Equal(other) || link.Child.Contains(other) {
			return true
		}
	}
	return false
}

// ContainsID reports whether the node with the given id appears below n.
func (n *Node) ContainsID(nodeID int) bool {
	for _, link := range n.Children {
		if link.Child.NodeID == nodeID || link.Child.ContainsID(nodeID) {
			return true
		}
	}
	return false
}

// GetAllChildrenAsLearningUnitNodes returns the learning units below n, sorted
// by the order of their link and the code of their parent.
func (n *Node) GetAllChildrenAsLearningUnitNodes() []*Node {
	links := make([]*Link, 0)
	for link := range n.GetAllChildren().Iter() {
		if link.Child.IsLearningUnit() {
			links = append(links, link)
		}
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Order != links[j].Order {
			return links[i].Order < links[j].Order
		}
		if links[i].Parent.Code != links[j].Parent.Code {
			return links[i].Parent.Code < links[j].Parent.Code
		}
		return links[i].Child.Code < links[j].Child.Code
	})

	seen := make(map[int]struct{}, len(links))
	nodes := make([]*Node, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link.Child.NodeID]; ok {
			continue
		}
		seen[link.Child.NodeID] = struct{}{}
		nodes = append(nodes, link.Child)
	}
	return nodes
}

// Descendents maps the path of every node below n to the node. Paths start with n's id.
func (n *Node) Descendents() map[Path]*Node {
	descendents := make(map[Path]*Node)
	n.collectDescendents(Path("").Join(n.NodeID), descendents)
	return descendents
}

func (n *Node) collectDescendents(path Path, descendents map[Path]*Node) {
	for _, link := range n.Children {
		childPath := path.Join(link.Child.NodeID)
		descendents[childPath] = link.Child
		link.Child.collectDescendents(childPath, descendents)
	}
}

// sortChildren restores the sibling order after a bulk load.
func (n *Node) sortChildren() {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return n.Children[i].Order < n.Children[j].Order
	})
}
