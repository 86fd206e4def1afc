package service

import (
	"context"
	"testing"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/cache"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/queue"
	"github.com/emrgen/programtree/internal/repository"
	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tester"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/stretchr/testify/require"
)

const testYear = 2021

// env is a bus wired to a seeded store
//
//	LDROI100B (bachelor)
//	└── LDROI100T (common core)
//	    ├── LDROI101R (sub group)
//	    │   ├── LDROI1002
//	    │   └── LDROI1003
//	    └── LDROI1001 (prerequisite LDROI1002)
type env struct {
	bus   *bus.MessageBus
	store store.Store
	cache *cache.MemoryContentCache
	queue *queue.MemoryTreeQueue
	trees *repository.ProgramTreeRepository
	nodes map[string]*tree.Node
}

func (e *env) path(codes ...string) string {
	nodes := make([]*tree.Node, 0, len(codes))
	for _, code := range codes {
		nodes = append(nodes, e.nodes[code])
	}
	return string(tree.BuildPath(nodes...))
}

func (e *env) reload(t *testing.T) *tree.ProgramTree {
	t.Helper()
	pt, err := e.trees.Get(context.Background(), rootTree.Identity())
	require.NoError(t, err)
	return pt
}

var rootTree = command.Tree{Code: "LDROI100B", Year: testYear}

func newEnv(t *testing.T) *env {
	t.Helper()
	tester.CleanDB()
	ctx := context.Background()

	st := store.NewGormStore(tester.TestDB())
	e := &env{
		bus:   bus.NewMessageBus(bus.Logging()),
		store: st,
		cache: tester.ContentCache(),
		queue: queue.NewMemoryTreeQueue(),
		trees: repository.NewProgramTreeRepository(st),
		nodes: make(map[string]*tree.Node),
	}
	require.NoError(t, NewProgramTreeService(st, e.cache, e.queue).Register(e.bus))

	nodes := repository.NewNodeRepository(st)
	group := func(code string, nodeType tree.NodeType) *tree.Node {
		node := tree.NewNodeOfType(nodeType, tree.Node{Code: code, Title: code, Year: testYear})
		require.NoError(t, nodes.CreateGroup(ctx, node))
		e.nodes[code] = node
		return node
	}
	unit := func(code string) *tree.Node {
		credits := 5.0
		node := tree.NewNode(tree.KindLearningUnit, tree.Node{Code: code, Title: code, Year: testYear, Credits: &credits})
		require.NoError(t, nodes.CreateLearningUnit(ctx, node))
		e.nodes[code] = node
		return node
	}

	root := group("LDROI100B", tree.TypeBachelor)
	core := group("LDROI100T", tree.TypeCommonCore)
	sub := group("LDROI101R", tree.TypeSubGroup)
	group("LDROI102R", tree.TypeSubGroup)
	u1001, u1002, u1003 := unit("LDROI1001"), unit("LDROI1002"), unit("LDROI1003")

	root.AddChild(core, tree.LinkAttributes{IsMandatory: true})
	core.AddChild(sub, tree.LinkAttributes{})
	core.AddChild(u1001, tree.LinkAttributes{Block: intPtr(1)})
	sub.AddChild(u1002, tree.LinkAttributes{})
	sub.AddChild(u1003, tree.LinkAttributes{})

	relationships := tree.NewAuthorizedRelationshipList(
		tree.AuthorizedRelationship{ParentType: tree.TypeBachelor, ChildType: tree.TypeCommonCore, MinCount: 1, MaxCount: 1},
		tree.AuthorizedRelationship{ParentType: tree.TypeCommonCore, ChildType: tree.TypeSubGroup},
		tree.AuthorizedRelationship{ParentType: tree.TypeCommonCore, ChildType: tree.TypeLearningUnit},
		tree.AuthorizedRelationship{ParentType: tree.TypeSubGroup, ChildType: tree.TypeSubGroup},
		tree.AuthorizedRelationship{ParentType: tree.TypeSubGroup, ChildType: tree.TypeLearningUnit},
	)
	require.NoError(t, repository.NewRelationshipRepository(st).Save(ctx, relationships))

	pt := tree.New(root, relationships, nil)
	_, err := pt.SetPrerequisite(tree.BuildPath(root, core, u1001), "LDROI1002")
	require.NoError(t, err)
	require.NoError(t, e.trees.Create(ctx, pt))

	return e
}

// outsideGroup stores a sub group holding children and used by no program.
func (e *env) outsideGroup(t *testing.T, code string, children ...*tree.Node) *tree.Node {
	t.Helper()
	ctx := context.Background()

	group := tree.NewNodeOfType(tree.TypeSubGroup, tree.Node{Code: code, Title: code, Year: testYear})
	require.NoError(t, repository.NewNodeRepository(e.store).CreateGroup(ctx, group))
	for _, child := range children {
		group.AddChild(child, tree.LinkAttributes{})
	}
	require.NoError(t, e.trees.Create(ctx, tree.New(group, nil, nil)))
	e.nodes[code] = group
	return group
}

func intPtr(v int) *int {
	return &v
}
