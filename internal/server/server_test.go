package server

import (
	"context"
	"testing"

	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var rootTree = command.Tree{Code: "LDROI100B", Year: testYear}

func TestGrpc_GetProgramTree(t *testing.T) {
	deps, _ := newDeps(t)
	client := newTestClient(t, deps)
	ctx := context.Background()

	view, err := client.GetProgramTree(ctx, command.GetProgramTree{Tree: rootTree})
	require.NoError(t, err)
	assert.Equal(t, "LDROI100B", view.Root.Code)
	require.Len(t, view.Root.Children, 1)
	assert.Len(t, view.Root.Children[0].Children, 2)

	content, err := client.GetContent(ctx, command.GetContent{Tree: rootTree})
	require.NoError(t, err)
	assert.False(t, content.Cached)
	assert.NotEmpty(t, content.Content)
}

func TestGrpc_Errors(t *testing.T) {
	deps, nodes := newDeps(t)
	client := newTestClient(t, deps)
	ctx := context.Background()

	_, err := client.GetProgramTree(ctx, command.GetProgramTree{Tree: command.Tree{Code: "UNKNOWN", Year: testYear}})
	assert.Equal(t, codes.NotFound, status.Code(err))

	// rejected by the validator interceptor before reaching the bus
	_, err = client.PasteElement(ctx, command.PasteElement{Tree: rootTree})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	path := string(tree.BuildPath(nodes["LDROI100B"], nodes["LDROI100T"], nodes["LDROI1002"]))
	_, err = client.DetachElement(ctx, command.DetachElement{Tree: rootTree, Path: path})
	st := status.Convert(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	require.Len(t, st.Details(), 1)
	failure, ok := st.Details()[0].(*errdetails.PreconditionFailure)
	require.True(t, ok)
	require.Len(t, failure.GetViolations(), 1)
	assert.Contains(t, failure.GetViolations()[0].GetDescription(), "LDROI1002")
}

func TestGrpc_Write(t *testing.T) {
	deps, nodes := newDeps(t)
	client := newTestClient(t, deps)
	ctx := context.Background()

	path := string(tree.BuildPath(nodes["LDROI100B"], nodes["LDROI100T"], nodes["LDROI1002"]))
	link, err := client.OrderUpLink(ctx, command.OrderUpLink{Tree: rootTree, Path: path})
	require.NoError(t, err)
	assert.Equal(t, 0, link.Order)

	result, err := client.SetPrerequisite(ctx, command.SetPrerequisite{
		Tree: rootTree,
		Path: string(tree.BuildPath(nodes["LDROI100B"], nodes["LDROI100T"], nodes["LDROI1001"])),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Expression)

	detached, err := client.DetachElement(ctx, command.DetachElement{Tree: rootTree, Path: path})
	require.NoError(t, err)
	assert.Equal(t, "LDROI1002", detached.Link.ChildCode)

	links, err := client.GetLinksUsingNode(ctx, command.GetLinksUsingNode{Code: "LDROI1001", Year: testYear})
	require.NoError(t, err)
	require.Len(t, links.Links, 1)
	assert.Equal(t, 0, links.Links[0].Order)
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "not found", err: tree.ErrNodeNotFound, code: codes.NotFound},
		{name: "business", err: tree.NewBusinessError("nope"), code: codes.FailedPrecondition},
		{name: "multiple", err: &tree.MultipleBusinessErrors{Errors: []error{tree.NewBusinessError("a"), tree.NewBusinessError("b")}}, code: codes.FailedPrecondition},
		{name: "canceled", err: context.Canceled, code: codes.Canceled},
		{name: "internal", err: assert.AnError, code: codes.Internal},
		{name: "status", err: status.Error(codes.Unavailable, "down"), code: codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(toStatus(tt.err)))
		})
	}

	st := status.Convert(toStatus(&tree.MultipleBusinessErrors{Errors: []error{tree.NewBusinessError("a"), tree.NewBusinessError("b")}}))
	failure := st.Details()[0].(*errdetails.PreconditionFailure)
	assert.Len(t, failure.GetViolations(), 2)
	assert.Nil(t, toStatus(nil))
}
