package server

import (
	"context"
	"net"
	"testing"

	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/config"
	"github.com/emrgen/programtree/internal/repository"
	"github.com/emrgen/programtree/internal/tester"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const testYear = 2021

func testConfig() *config.Config {
	return &config.Config{
		Queue:    config.QueueConfig{Driver: "memory", Topic: "programtree.tree.changed"},
		Cache:    config.CacheConfig{Compression: "none"},
		MaxDepth: repository.DefaultMaxDepth,
	}
}

// newDeps seeds LDROI100B > LDROI100T > {LDROI1001, LDROI1002}, with LDROI1001
// requiring LDROI1002.
func newDeps(t *testing.T) (*Dependencies, map[string]*tree.Node) {
	t.Helper()
	tester.CleanDB()
	ctx := context.Background()

	deps, err := NewDependencies(testConfig(), tester.TestDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	nodes := make(map[string]*tree.Node)
	repo := repository.NewNodeRepository(deps.Store)
	root := tree.NewNodeOfType(tree.TypeBachelor, tree.Node{Code: "LDROI100B", Title: "Bachelor", Year: testYear})
	core := tree.NewNodeOfType(tree.TypeCommonCore, tree.Node{Code: "LDROI100T", Title: "Common core", Year: testYear})
	for _, group := range []*tree.Node{root, core} {
		require.NoError(t, repo.CreateGroup(ctx, group))
		nodes[group.Code] = group
	}
	for _, code := range []string{"LDROI1001", "LDROI1002"} {
		credits := 5.0
		unit := tree.NewNode(tree.KindLearningUnit, tree.Node{Code: code, Title: code, Year: testYear, Credits: &credits})
		require.NoError(t, repo.CreateLearningUnit(ctx, unit))
		core.AddChild(unit, tree.LinkAttributes{})
		nodes[code] = unit
	}
	root.AddChild(core, tree.LinkAttributes{IsMandatory: true})

	relationships := tree.NewAuthorizedRelationshipList(
		tree.AuthorizedRelationship{ParentType: tree.TypeBachelor, ChildType: tree.TypeCommonCore, MinCount: 1, MaxCount: 1},
		tree.AuthorizedRelationship{ParentType: tree.TypeCommonCore, ChildType: tree.TypeLearningUnit},
	)
	require.NoError(t, repository.NewRelationshipRepository(deps.Store).Save(ctx, relationships))

	pt := tree.New(root, relationships, nil)
	_, err = pt.SetPrerequisite(tree.BuildPath(root, core, nodes["LDROI1001"]), "LDROI1002")
	require.NoError(t, err)
	require.NoError(t, repository.NewProgramTreeRepository(deps.Store).Create(ctx, pt))

	return deps, nodes
}

// newTestClient serves deps on an in-memory listener.
func newTestClient(t *testing.T, deps *Dependencies) programtree.Client {
	t.Helper()
	listener := bufconn.Listen(1024 * 1024)
	grpcServer, _ := NewGrpcServer(deps)
	go func() {
		_ = grpcServer.Serve(listener)
	}()
	t.Cleanup(grpcServer.Stop)

	client, err := programtree.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
