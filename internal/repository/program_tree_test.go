package repository

import (
	"context"
	"sort"
	"testing"

	"github.com/emrgen/programtree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathsOf(t *tree.ProgramTree) []string {
	var paths []string
	for path := range t.Root.Descendents() {
		paths = append(paths, string(path))
	}
	sort.Strings(paths)
	return paths
}

func TestProgramTreeRepository_Get(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	pt, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)

	assert.Equal(t, s.identity(), pt.Identity())
	assert.Equal(t, pathsOf(tree.New(s.root, nil, nil)), pathsOf(pt))

	core := pt.Root.Children[0]
	assert.NotZero(t, core.PK)
	assert.True(t, core.IsMandatory)
	assert.Equal(t, []string{"LDROI101R", "LDROI1001"}, codes(core.Child.ChildrenAsNodes()))

	unit, err := pt.GetNode(tree.BuildPath(s.root, s.core, s.u1001))
	require.NoError(t, err)
	assert.Equal(t, "1", pt.GetFirstLinkOccurrenceUsingNode(unit).BlockRepr())
	assert.Equal(t, "LDROI1002", unit.GetPrerequisite().String())
	assert.Equal(t, tree.ProgramTreeIdentity{Code: "LDROI100B", Year: testYear}, pt.Prerequisites.ContextTree)

	u1002, err := pt.GetNodeByCodeAndYear("LDROI1002", testYear)
	require.NoError(t, err)
	assert.True(t, u1002.IsPrerequisite())
	assert.Equal(t, "4 / 5", pt.GetFirstLinkOccurrenceUsingNode(u1002).RelativeCreditsRepr())

	assert.True(t, pt.AuthorizedRelationships.IsMandatoryChildType(tree.TypeBachelor, tree.TypeCommonCore))
}

func TestProgramTreeRepository_GetUnknown(t *testing.T) {
	s := seed(t)

	_, err := s.trees.Get(context.Background(), tree.ProgramTreeIdentity{Code: "LDROI100B", Year: 1990})
	assert.ErrorIs(t, err, tree.ErrProgramTreeNotFound)
}

func TestProgramTreeRepository_GetMaxDepth(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	// the learning units sit at level 2
	s.trees.maxDepth = 2
	pt, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)
	assert.Len(t, pt.GetAllLinks(), 5)

	s.trees.maxDepth = 1
	_, err = s.trees.Get(ctx, s.identity())
	assert.ErrorIs(t, err, ErrTreeTooDeep)
}

func TestProgramTreeRepository_GetNode(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	core, err := s.trees.GetNode(ctx, s.core.Identity())
	require.NoError(t, err)
	assert.Equal(t, []string{"LDROI101R", "LDROI1001"}, codes(core.ChildrenAsNodes()))
	assert.True(t, core.ContainsID(s.u1003.NodeID))

	unit, err := s.trees.GetNode(ctx, s.u1001.Identity())
	require.NoError(t, err)
	assert.True(t, unit.IsLearningUnit())
	assert.Empty(t, unit.Children)

	_, err = s.trees.GetNode(ctx, tree.NodeIdentity{Code: "LDROI9999", Year: testYear})
	assert.ErrorIs(t, err, tree.ErrNodeNotFound)
}

func TestProgramTreeRepository_Update(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	u1004 := newUnit(t, s.store, "LDROI1004", testYear)

	pt, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)

	_, err = pt.PasteNode(u1004, tree.PasteOptions{Path: tree.BuildPath(s.root, s.core)})
	require.NoError(t, err)
	_, _, err = pt.DetachNode(tree.BuildPath(s.root, s.core, s.subGroup, s.u1003))
	require.NoError(t, err)
	_, err = pt.OrderUp(tree.BuildPath(s.root, s.core, s.u1001))
	require.NoError(t, err)
	_, err = pt.UpdateLink(tree.LinkIdentity{
		ParentCode: "LDROI101R", ParentYear: testYear, ChildCode: "LDROI1002", ChildYear: testYear,
	}, tree.LinkAttributes{Block: intPtr(12), Comment: "first block", QuadrimesterDerogation: tree.DerogationQ2})
	require.NoError(t, err)
	_, err = pt.SetPrerequisite(tree.BuildPath(s.root, s.core, s.u1001), "LDROI1002 OU LDROI1004")
	require.NoError(t, err)

	expected := pathsOf(pt)
	require.NoError(t, s.trees.Update(ctx, pt))
	assert.Empty(t, pt.CreatedLinks())
	assert.Empty(t, pt.DeletedLinks())
	assert.Empty(t, pt.ChangedLinks())

	reloaded, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)
	assert.Equal(t, expected, pathsOf(reloaded))

	core, err := reloaded.GetNode(tree.BuildPath(s.root, s.core))
	require.NoError(t, err)
	assert.Equal(t, []string{"LDROI1001", "LDROI101R", "LDROI1004"}, codes(core.ChildrenAsNodes()))
	for i, link := range core.Children {
		assert.Equal(t, i, link.Order)
	}

	link := reloaded.GetFirstLinkOccurrenceUsingNode(s.u1002)
	require.NotNil(t, link)
	assert.Equal(t, "1 ; 2", link.BlockRepr())
	assert.Equal(t, "first block", link.Comment)
	assert.Equal(t, tree.DerogationQ2, link.QuadrimesterDerogation)

	unit, err := reloaded.GetNodeByCodeAndYear("LDROI1001", testYear)
	require.NoError(t, err)
	assert.Equal(t, "LDROI1002 OU LDROI1004", unit.GetPrerequisite().String())
}

func TestProgramTreeRepository_UpdateRemovesPrerequisite(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	pt, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)
	_, err = pt.SetPrerequisite(tree.BuildPath(s.root, s.core, s.u1001), "")
	require.NoError(t, err)
	require.NoError(t, s.trees.Update(ctx, pt))

	reloaded, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)
	assert.Empty(t, reloaded.GetNodesThatHavePrerequisites())
}

func TestProgramTreeRepository_Search(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	trees, err := s.trees.Search(ctx, "LDROI100B")
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Len(t, trees[0].GetAllLearningUnitNodes(), 3)

	trees, err = s.trees.SearchFromChildren(ctx, []tree.NodeIdentity{{Code: "LDROI1003", Year: testYear}})
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, s.identity(), trees[0].Identity())

	trees, err = s.trees.SearchFromChildren(ctx, []tree.NodeIdentity{{Code: "UNKNOWN", Year: testYear}})
	require.NoError(t, err)
	assert.Empty(t, trees)
}

func TestProgramTreeRepository_Delete(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	// a group shared with another program survives the deletion
	other := newGroup(t, s.store, "LDROI200B", tree.TypeBachelor, testYear)
	other.AddChild(s.subGroup, tree.LinkAttributes{})
	require.NoError(t, s.trees.Create(ctx, tree.New(other, testRelationships, nil)))

	require.NoError(t, s.trees.Delete(ctx, s.identity()))

	_, err := s.trees.Get(ctx, s.identity())
	assert.ErrorIs(t, err, tree.ErrProgramTreeNotFound)

	_, err = s.nodes.Get(ctx, s.core.Identity())
	assert.ErrorIs(t, err, tree.ErrNodeNotFound)
	_, err = s.nodes.Get(ctx, s.u1001.Identity())
	assert.NoError(t, err)

	remaining, err := s.trees.Get(ctx, tree.ProgramTreeIdentity{Code: "LDROI200B", Year: testYear})
	require.NoError(t, err)
	assert.Equal(t, []string{"LDROI1002", "LDROI1003"}, codes(remaining.GetAllLearningUnitNodes()))
}

func TestProgramTreeRepository_DeleteUsedElsewhere(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	parent := newGroup(t, s.store, "LDROI300B", tree.TypeBachelor, testYear)
	parent.AddChild(s.root, tree.LinkAttributes{})
	require.NoError(t, s.trees.Create(ctx, tree.New(parent, nil, nil)))

	err := s.trees.Delete(ctx, s.identity())
	assert.True(t, tree.IsBusinessError(err))

	_, err = s.trees.Get(ctx, s.identity())
	assert.NoError(t, err)
}

func TestProgramTreeRepository_DeleteLoadsInTransaction(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	err := s.trees.Delete(ctx, tree.ProgramTreeIdentity{Code: "LDROI100B", Year: 1990})
	assert.ErrorIs(t, err, tree.ErrProgramTreeNotFound)

	// the load inside the transaction keeps the depth of the repository
	s.trees.maxDepth = 1
	err = s.trees.Delete(ctx, s.identity())
	assert.ErrorIs(t, err, ErrTreeTooDeep)

	s.trees.maxDepth = DefaultMaxDepth
	_, err = s.trees.Get(ctx, s.identity())
	assert.NoError(t, err)
}

func TestFillFromLastYear(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	newGroup(t, s.store, "LDROI100B", tree.TypeBachelor, testYear+1)
	newUnit(t, s.store, "LDROI1001", testYear+1)
	newUnit(t, s.store, "LDROI1002", testYear+1)

	from, err := s.trees.Get(ctx, s.identity())
	require.NoError(t, err)
	to, err := s.trees.Get(ctx, tree.ProgramTreeIdentity{Code: "LDROI100B", Year: testYear + 1})
	require.NoError(t, err)

	report, err := tree.FillFromLastYear(ctx, from, to, NewNextYearResolver(s.store))
	require.NoError(t, err)
	events := report.OfType(tree.EventCopyLearningUnitNotExistForYear)
	require.Len(t, events, 1)
	assert.Equal(t, "LDROI1003", events[0].Node.Code)

	require.NoError(t, s.trees.Update(ctx, to))

	filled, err := s.trees.Get(ctx, to.Identity())
	require.NoError(t, err)
	units := filled.GetAllLearningUnitNodes()
	assert.Equal(t, []string{"LDROI1001", "LDROI1002", "LDROI1003"}, codes(units))
	for _, unit := range units {
		expected := testYear + 1
		if unit.Code == "LDROI1003" {
			expected = testYear
		}
		assert.Equal(t, expected, unit.Year, unit.Code)
	}

	core, err := s.nodes.Get(ctx, tree.NodeIdentity{Code: "LDROI100T", Year: testYear + 1})
	require.NoError(t, err)
	assert.True(t, filled.Contains(core))

	unit, err := filled.GetNodeByCodeAndYear("LDROI1001", testYear+1)
	require.NoError(t, err)
	assert.Equal(t, "LDROI1002", unit.GetPrerequisite().String())
}

func codes(nodes []*tree.Node) []string {
	result := make([]string, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, node.Code)
	}
	return result
}
