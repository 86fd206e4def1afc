package tree

import (
	"errors"
	"testing"

	"github.com/emrgen/programtree/internal/prerequisite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramTree_GetNode(t *testing.T) {
	f := newFixture(t)

	root, err := f.tree.GetNode("1")
	require.NoError(t, err)
	assert.Equal(t, f.root, root)

	for path, expected := range f.root.Descendents() {
		node, err := f.tree.GetNode(path)
		assert.NoError(t, err, path)
		assert.Equal(t, expected, node, path)
	}

	for _, path := range []Path{"1|99", "1|11", "5|6", "", "1|5|x"} {
		_, err := f.tree.GetNode(path)
		assert.ErrorIs(t, err, ErrNodeNotFound, path)
	}
}

func TestProgramTree_PasteNode(t *testing.T) {
	f := newFixture(t)
	g2 := newGroup(20, "G2", TypeSubGroup)

	_, err := f.tree.GetNode("1|5|20")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	siblings := len(f.core.Children)
	link, err := f.tree.PasteNode(g2, PasteOptions{Path: "1|5"})
	require.NoError(t, err)

	assert.Equal(t, siblings, link.Order)
	assert.Equal(t, f.core, link.Parent)
	assert.Equal(t, g2, link.Child)
	assert.Equal(t, []*Link{link}, f.tree.CreatedLinks())

	node, err := f.tree.GetNode("1|5|20")
	require.NoError(t, err)
	assert.Equal(t, g2, node)
}

func TestProgramTree_PasteNodeValidation(t *testing.T) {
	tests := []struct {
		name  string
		node  func(f *fixture) *Node
		path  Path
		attrs LinkAttributes
	}{
		{
			name: "attach to learning unit",
			node: func(f *fixture) *Node { return newUnit(30, "LDROI1030") },
			path: "1|5|10",
		},
		{
			name: "ancestor loaded without its children",
			node: func(f *fixture) *Node {
				attach(f.subGroup, newGroup(20, "LDROI102R", TypeSubGroup), 120)
				f.tree.invalidate()
				return newGroup(6, "LDROI101R", TypeSubGroup)
			},
			path: "1|5|6|20",
		},
		{
			name: "node containing the parent",
			node: func(f *fixture) *Node {
				inner := newGroup(20, "LDROI102R", TypeSubGroup)
				attach(f.subGroup, inner, 120)
				f.tree.invalidate()
				outer := newGroup(21, "LDROI103R", TypeSubGroup)
				attach(outer, f.subGroup, 121)
				return outer
			},
			path: "1|5|6|20",
		},
		{
			name: "itself",
			node: func(f *fixture) *Node { return f.subGroup },
			path: "1|5|6",
		},
		{
			name: "already a child",
			node: func(f *fixture) *Node { return f.u1001 },
			path: "1|5",
		},
		{
			name: "other year",
			node: func(f *fixture) *Node {
				g := newGroup(31, "LDROI102R", TypeSubGroup)
				g.Year = testYear + 1
				return g
			},
			path: "1|5",
		},
		{
			name: "unauthorized type",
			node: func(f *fixture) *Node { return newUnit(32, "LDROI1032") },
			path: "1",
		},
		{
			name: "maximum count",
			node: func(f *fixture) *Node { return newGroup(33, "LDROI200T", TypeCommonCore) },
			path: "1",
		},
		{
			name:  "decreasing block",
			node:  func(f *fixture) *Node { return newUnit(34, "LDROI1034") },
			path:  "1|5",
			attrs: LinkAttributes{Block: intPtr(132)},
		},
		{
			name:  "reference to learning unit",
			node:  func(f *fixture) *Node { return newUnit(35, "LDROI1035") },
			path:  "1|5",
			attrs: LinkAttributes{LinkType: LinkTypeReference},
		},
		{
			name:  "negative credits",
			node:  func(f *fixture) *Node { return newUnit(36, "LDROI1036") },
			path:  "1|5",
			attrs: LinkAttributes{RelativeCredits: intPtr(-1)},
		},
		{
			name: "learning class",
			node: func(f *fixture) *Node {
				return NewNode(KindLearningClass, Node{NodeID: 37, Code: "LDROI1001-A", Year: testYear})
			},
			path: "1|5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			node := tt.node(f)
			links := len(f.tree.GetAllLinks())

			_, err := f.tree.PasteNode(node, PasteOptions{Path: tt.path, LinkAttributes: tt.attrs})
			require.Error(t, err)

			var multiple *MultipleBusinessErrors
			assert.True(t, errors.As(err, &multiple))
			assert.True(t, IsBusinessError(err))
			assert.Len(t, f.tree.GetAllLinks(), links)
			assert.Empty(t, f.tree.CreatedLinks())
		})
	}
}

func TestProgramTree_PasteUnknownPath(t *testing.T) {
	f := newFixture(t)
	_, err := f.tree.PasteNode(newGroup(20, "G2", TypeSubGroup), PasteOptions{Path: "1|42"})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestProgramTree_PasteReferenceCountsReferencedChildren(t *testing.T) {
	f := newFixture(t)

	options := newGroup(40, "LDROI900G", TypeSubGroup)
	attach(options, newGroup(41, "LDROI901O", TypeOption), 0)

	// an option is only allowed below an option list choice
	_, err := f.tree.PasteNode(options, PasteOptions{
		Path:           "1|5",
		LinkAttributes: LinkAttributes{LinkType: LinkTypeReference},
	})
	assert.Error(t, err)
}

func TestProgramTree_DetachNode(t *testing.T) {
	f := newFixture(t)

	link, warnings, err := f.tree.DetachNode("1|5|6")
	require.NoError(t, err)
	assert.True(t, warnings.Empty())

	assert.Equal(t, f.subGroup, link.Child)
	assert.Equal(t, []*Node{f.u1001}, f.core.ChildrenAsNodes())
	assert.Equal(t, 0, f.core.Children[0].Order)
	assert.Equal(t, []*Link{link}, f.tree.DeletedLinks())
	assert.Equal(t, []*Link{f.core.Children[0]}, f.tree.ChangedLinks())

	_, err = f.tree.GetNode("1|5|6|11")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestProgramTree_DetachCreatedLink(t *testing.T) {
	f := newFixture(t)

	_, err := f.tree.PasteNode(newGroup(20, "G2", TypeSubGroup), PasteOptions{Path: "1|5"})
	require.NoError(t, err)

	_, _, err = f.tree.DetachNode("1|5|20")
	require.NoError(t, err)

	assert.Empty(t, f.tree.CreatedLinks())
	assert.Empty(t, f.tree.DeletedLinks())
}

func TestProgramTree_DetachRoot(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.tree.DetachNode("1")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestProgramTree_DetachPrerequisite(t *testing.T) {
	f := newFixture(t)

	// LDROI1002 is a prerequisite of LDROI1001
	_, err := f.tree.SetPrerequisite("1|5|10", "LDROI1002")
	require.NoError(t, err)
	assert.True(t, f.u1002.IsPrerequisite())
	assert.Equal(t, []*Node{f.u1001}, f.u1002.GetIsPrerequisiteOf())

	_, _, err = f.tree.DetachNode("1|5|6|11")
	var unitErr *CannotDetachLearningWhoIsPrerequisiteError
	require.True(t, errors.As(err, &unitErr))
	assert.Equal(t, f.u1002.Identity(), unitErr.Node)

	_, _, err = f.tree.DetachNode("1|5|6")
	var groupErr *CannotDetachChildrenWhoArePrerequisiteError
	require.True(t, errors.As(err, &groupErr))
	assert.Equal(t, []string{"LDROI1002"}, groupErr.Codes)
	assert.Equal(t, f.tree.Identity(), groupErr.Root)

	// nothing changed
	assert.Len(t, f.tree.GetAllLinks(), 5)
	assert.Empty(t, f.tree.DeletedLinks())
}

func TestProgramTree_DetachPrerequisiteStillReachable(t *testing.T) {
	f := newFixture(t)
	attach(f.core, f.u1002, 105)
	f.tree = New(f.root, testRelationships(), nil)

	_, err := f.tree.SetPrerequisite("1|5|10", "LDROI1002")
	require.NoError(t, err)

	// LDROI1002 stays in the tree through 1|5|11
	_, _, err = f.tree.DetachNode("1|5|6|11")
	assert.NoError(t, err)
}

func TestProgramTree_DetachUnitWithPrerequisite(t *testing.T) {
	f := newFixture(t)

	_, err := f.tree.SetPrerequisite("1|5|10", "LDROI1002 ET LDROI1003")
	require.NoError(t, err)
	f.tree.ClearChanges()

	_, warnings, err := f.tree.DetachNode("1|5|10")
	require.NoError(t, err)
	require.False(t, warnings.Empty())
	assert.Contains(t, warnings.Messages[0], "LDROI1001")

	assert.True(t, f.tree.Prerequisites.Get(f.u1001.Identity()).IsNull())
	changed := f.tree.ChangedPrerequisites()
	require.Len(t, changed, 1)
	assert.Equal(t, f.u1001.Identity(), changed[0].Node)
	assert.False(t, f.u1002.IsPrerequisite())
}

func TestProgramTree_DetachMinimumChildren(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.tree.DetachNode("1|5")
	assert.Error(t, err)
	assert.True(t, IsBusinessError(err))
	assert.Len(t, f.root.Children, 1)
}

func TestProgramTree_Order(t *testing.T) {
	f := newFixture(t)
	first, second := f.core.Children[0], f.core.Children[1]

	_, err := f.tree.OrderUp("1|5|10")
	require.NoError(t, err)
	assert.Equal(t, []*Node{f.u1001, f.subGroup}, f.core.ChildrenAsNodes())
	assert.Equal(t, 0, second.Order)
	assert.Equal(t, 1, first.Order)
	assert.ElementsMatch(t, []*Link{first, second}, f.tree.ChangedLinks())

	_, err = f.tree.OrderDown("1|5|10")
	require.NoError(t, err)
	assert.Equal(t, []*Node{f.subGroup, f.u1001}, f.core.ChildrenAsNodes())
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	_, err = f.tree.OrderUp("1|5|6")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)

	_, err = f.tree.OrderDown("1|5|10")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	_, err = f.tree.OrderUp("1|5|99")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestProgramTree_OrderWithGap(t *testing.T) {
	f := newFixture(t)
	first, second := f.core.Children[0], f.core.Children[1]
	second.Order = 2

	_, err := f.tree.OrderUp("1|5|10")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Order)
	assert.Equal(t, 2, first.Order)

	_, err = f.tree.OrderDown("1|5|10")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.ElementsMatch(t, []*Link{first, second}, f.tree.ChangedLinks())
}

func TestProgramTree_UpdateLink(t *testing.T) {
	f := newFixture(t)
	identity := LinkIdentity{ParentCode: "LDROI100T", ChildCode: "LDROI1001", ParentYear: testYear, ChildYear: testYear}

	link, err := f.tree.UpdateLink(identity, LinkAttributes{
		RelativeCredits: intPtr(4),
		IsMandatory:     true,
		Block:           intPtr(13),
		Comment:         "comment",
	})
	require.NoError(t, err)
	assert.True(t, link.HasChanged())
	assert.Equal(t, "1 ; 3", link.BlockRepr())
	assert.Equal(t, []*Link{link}, f.tree.ChangedLinks())

	_, err = f.tree.UpdateLink(identity, LinkAttributes{Block: intPtr(7)})
	assert.True(t, IsBusinessError(err))
	assert.Equal(t, 13, *link.Block)

	identity.ChildCode = "LDROI9999"
	_, err = f.tree.UpdateLink(identity, LinkAttributes{})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestProgramTree_UpdateLinkToReference(t *testing.T) {
	f := newFixture(t)
	reference := LinkAttributes{LinkType: LinkTypeReference}

	// the common core children would land under the bachelor
	_, err := f.tree.UpdateLink(linkIdentity(f.root, f.core), reference)
	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
	assert.False(t, f.root.Children[0].IsReference())

	link, err := f.tree.UpdateLink(linkIdentity(f.core, f.subGroup), reference)
	require.NoError(t, err)
	assert.True(t, link.IsReference())
	assert.ElementsMatch(t,
		[]NodeType{TypeLearningUnit, TypeLearningUnit, TypeLearningUnit},
		f.core.GetChildrenTypes(true))
}

func TestProgramTree_SetPrerequisite(t *testing.T) {
	f := newFixture(t)

	p, err := f.tree.SetPrerequisite("1|5|10", "(LDROI1002 OU LDROI1003)")
	assert.Error(t, err)
	assert.ErrorIs(t, err, prerequisite.ErrInvalidSyntax)
	assert.True(t, IsBusinessError(err))
	assert.Nil(t, p)

	tests := []struct {
		name       string
		path       Path
		expression string
	}{
		{name: "self reference", path: "1|5|10", expression: "LDROI1001 ET LDROI1002"},
		{name: "unknown unit", path: "1|5|10", expression: "LDROI1002 OU LDROI9999"},
		{name: "duplicated unit", path: "1|5|10", expression: "LDROI1002 ET LDROI1002"},
		{name: "not a learning unit", path: "1|5|6", expression: "LDROI1002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tree.SetPrerequisite(tt.path, tt.expression)
			assert.True(t, IsBusinessError(err))
		})
	}
	assert.Empty(t, f.tree.ChangedPrerequisites())

	p, err = f.tree.SetPrerequisite("1|5|10", "LDROI1002 ou LDROI1003")
	require.NoError(t, err)
	assert.Equal(t, "LDROI1002 OU LDROI1003", p.String())
	assert.True(t, f.u1001.HasPrerequisite())
	assert.Equal(t, []*Node{f.u1001}, f.tree.GetNodesThatHavePrerequisites())
	assert.Equal(t, []*Node{f.u1001}, f.u1003.GetIsPrerequisiteOf())

	_, err = f.tree.SetPrerequisite("1|5|10", "")
	require.NoError(t, err)
	assert.False(t, f.u1001.HasPrerequisite())
	assert.False(t, f.u1003.IsPrerequisite())
}

func TestProgramTree_LinksUsingNode(t *testing.T) {
	f := newFixture(t)
	other := newGroup(7, "LDROI102R", TypeSubGroup)
	attach(f.core, other, 106)
	shared := attach(other, f.u1003, 107)
	f.tree = New(f.root, testRelationships(), nil)

	links := f.tree.GetLinksUsingNode(f.u1003)
	require.Len(t, links, 2)
	assert.Equal(t, f.subGroup, links[0].Parent)
	assert.Equal(t, shared, links[1])
	assert.Equal(t, links[0], f.tree.GetFirstLinkOccurrenceUsingNode(f.u1003))

	assert.Equal(t, []Path{"1|5|6|12", "1|5|7|12"}, f.tree.PathsOfNode(f.u1003))
	assert.True(t, f.tree.Contains(f.u1003))
	assert.False(t, f.tree.Contains(newUnit(99, "LDROI1099")))

	node, err := f.tree.GetNodeByCodeAndYear("LDROI1003", testYear)
	require.NoError(t, err)
	assert.Equal(t, f.u1003, node)

	_, err = f.tree.GetNodeByCodeAndYear("LDROI1003", testYear+1)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestProgramTree_GetAllNodes(t *testing.T) {
	f := newFixture(t)

	assert.Len(t, f.tree.GetAllNodes(), 6)
	assert.Equal(t, []*Node{f.u1001, f.u1002, f.u1003}, f.tree.GetAllLearningUnitNodes())
	assert.Equal(t, []*Node{f.root}, f.tree.GetAllNodes(TypeBachelor))
}
