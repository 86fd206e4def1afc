package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	group := NewNodeOfType(TypeCommonCore, Node{NodeID: 1, Code: "LDROI100T"})
	assert.Equal(t, KindGroup, group.Kind)
	assert.NotNil(t, group.Group)
	assert.Nil(t, group.LearningUnit)
	assert.True(t, group.IsGroup())
	assert.True(t, group.IsGroupOrMiniOrTraining())

	training := NewNodeOfType(TypeMasterMA120, Node{NodeID: 2, Code: "LDROI200S"})
	assert.Equal(t, KindEducationGroup, training.Kind)
	assert.True(t, training.IsTraining())
	assert.True(t, training.IsFinality())
	assert.False(t, training.IsMaster2M())

	unit := NewNodeOfType(TypeLearningUnit, Node{NodeID: 3, Code: "LDROI1001"})
	assert.Equal(t, KindLearningUnit, unit.Kind)
	assert.Nil(t, unit.Group)
	require.NotNil(t, unit.LearningUnit)
	assert.False(t, unit.HasPrerequisite())
	assert.False(t, unit.IsPrerequisite())

	class := NewNode(KindLearningClass, Node{NodeID: 4, Code: "LDROI1001-A", Group: &GroupData{}})
	assert.Equal(t, TypeLearningClass, class.NodeType)
	assert.Nil(t, class.Group)
	assert.True(t, class.IsLearningClass())
}

func TestNode_Equal(t *testing.T) {
	a := newUnit(1, "LDROI1001")
	b := newUnit(1, "LDROI9999")
	c := newUnit(2, "LDROI1001")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestNode_AddAndDetachChild(t *testing.T) {
	parent := newGroup(1, "LDROI100T", TypeCommonCore)
	first := newUnit(2, "LDROI1001")
	second := newUnit(3, "LDROI1002")

	l1 := parent.AddChild(first, LinkAttributes{})
	l2 := parent.AddChild(second, LinkAttributes{IsMandatory: true})
	assert.Equal(t, 0, l1.Order)
	assert.Equal(t, 1, l2.Order)
	assert.True(t, l2.IsMandatory)

	detached := parent.DetachChild(first.NodeID)
	assert.Equal(t, l1, detached)
	assert.Equal(t, []*Node{second}, parent.ChildrenAsNodes())

	assert.Nil(t, parent.DetachChild(42))
	assert.Len(t, parent.Children, 1)
}

func TestNode_GetAllChildren(t *testing.T) {
	root := newGroup(1, "LDROI100B", TypeBachelor)
	core := newGroup(2, "LDROI100T", TypeCommonCore)
	option := newGroup(3, "LDROI101O", TypeOption)
	u1 := newUnit(4, "LDROI1001")
	u2 := newUnit(5, "LDROI1002")

	attach(root, core, 0)
	attach(root, option, 0)
	attach(core, u1, 0)
	attach(option, u2, 0)
	attach(option, u1, 0)

	assert.Equal(t, 5, root.GetAllChildren().Cardinality())
	// the link to the option is kept, its content is not expanded
	assert.Equal(t, 3, root.GetAllChildren(TypeOption).Cardinality())

	nodes := root.GetAllChildrenAsNodes(nil)
	assert.Equal(t, 4, nodes.Cardinality())

	units := root.GetAllChildrenAsNodes([]NodeType{TypeLearningUnit}, TypeOption)
	assert.Equal(t, 1, units.Cardinality())
	assert.True(t, units.Contains(u1))

	assert.True(t, root.Contains(u2))
	assert.False(t, core.Contains(u2))
}

func TestNode_GetAllChildrenAsLearningUnitNodes(t *testing.T) {
	root := newGroup(1, "LDROI100T", TypeCommonCore)
	b := newGroup(2, "LDROI102R", TypeSubGroup)
	a := newGroup(3, "LDROI101R", TypeSubGroup)
	u1 := newUnit(4, "LDROI1004")
	u2 := newUnit(5, "LDROI1005")
	u3 := newUnit(6, "LDROI1006")

	attach(root, b, 0)
	attach(root, a, 0)
	attach(b, u1, 0)
	attach(a, u2, 0)
	attach(a, u3, 0)

	// sorted by link order first, then by parent code
	assert.Equal(t, []*Node{u2, u1, u3}, root.GetAllChildrenAsLearningUnitNodes())
}

func TestNode_GetChildrenTypes(t *testing.T) {
	parent := newGroup(1, "LDROI100T", TypeCommonCore)
	referenced := newGroup(2, "LDROI101G", TypeSubGroup)
	attach(referenced, newGroup(3, "LDROI101O", TypeOption), 0)
	attach(referenced, newUnit(4, "LDROI1001"), 0)

	parent.AddChild(referenced, LinkAttributes{LinkType: LinkTypeReference})
	parent.AddChild(newUnit(5, "LDROI1002"), LinkAttributes{})

	assert.Equal(t, []NodeType{TypeSubGroup, TypeLearningUnit}, parent.GetChildrenTypes(false))
	assert.Equal(t, []NodeType{TypeOption, TypeLearningUnit, TypeLearningUnit}, parent.GetChildrenTypes(true))
}

func TestNode_Descendents(t *testing.T) {
	f := newFixture(t)

	descendents := f.root.Descendents()
	assert.Len(t, descendents, 5)
	assert.Equal(t, f.u1003, descendents["1|5|6|12"])
	assert.Equal(t, f.u1001, descendents["1|5|10"])
	assert.NotContains(t, descendents, Path("1"))
}

func TestPath(t *testing.T) {
	p := BuildPath(newGroup(1, "A", TypeBachelor), newGroup(5, "B", TypeCommonCore))
	assert.Equal(t, Path("1|5"), p)
	assert.Equal(t, Path("1|5|7"), p.Join(7))
	assert.Equal(t, Path("1"), p.Parent())
	assert.Equal(t, Path(""), Path("1").Parent())
	assert.Equal(t, 1, p.Depth())

	last, err := p.Last()
	require.NoError(t, err)
	assert.Equal(t, 5, last)

	_, err = Path("1|a").Last()
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
