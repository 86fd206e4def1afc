package programtree

import (
	"context"
	"io"

	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/rpc"
	"github.com/emrgen/programtree/internal/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Client interface {
	io.Closer
	GetProgramTree(ctx context.Context, cmd command.GetProgramTree) (*service.ProgramTreeView, error)
	GetContent(ctx context.Context, cmd command.GetContent) (*service.ContentResult, error)
	GetLinksUsingNode(ctx context.Context, cmd command.GetLinksUsingNode) (*service.LinksResult, error)
	PasteElement(ctx context.Context, cmd command.PasteElement) (*service.LinkView, error)
	DetachElement(ctx context.Context, cmd command.DetachElement) (*service.DetachResult, error)
	UpdateLink(ctx context.Context, cmd command.UpdateLink) (*service.LinkView, error)
	BulkUpdateLinks(ctx context.Context, cmd command.BulkUpdateLinks) (*service.LinksResult, error)
	OrderUpLink(ctx context.Context, cmd command.OrderUpLink) (*service.LinkView, error)
	OrderDownLink(ctx context.Context, cmd command.OrderDownLink) (*service.LinkView, error)
	SetPrerequisite(ctx context.Context, cmd command.SetPrerequisite) (*service.PrerequisiteResult, error)
	FillFromLastYear(ctx context.Context, cmd command.FillFromLastYear) (*service.FillResult, error)
	DeleteProgramTree(ctx context.Context, cmd command.DeleteProgramTree) (*service.DeleteResult, error)
}

type client struct {
	conn *grpc.ClientConn
}

// NewClient connects to the program tree service at addr, e.g. ":4020".
func NewClient(addr string, opts ...grpc.DialOption) (Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &client{conn: conn}, nil
}

func (c *client) Close() error {
	return c.conn.Close()
}

func invoke[R any](ctx context.Context, c *client, cmd command.Command) (*R, error) {
	out := new(R)
	if err := c.conn.Invoke(ctx, rpc.FullMethod(cmd.CommandName()), cmd, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) GetProgramTree(ctx context.Context, cmd command.GetProgramTree) (*service.ProgramTreeView, error) {
	return invoke[service.ProgramTreeView](ctx, c, cmd)
}

func (c *client) GetContent(ctx context.Context, cmd command.GetContent) (*service.ContentResult, error) {
	return invoke[service.ContentResult](ctx, c, cmd)
}

func (c *client) GetLinksUsingNode(ctx context.Context, cmd command.GetLinksUsingNode) (*service.LinksResult, error) {
	return invoke[service.LinksResult](ctx, c, cmd)
}

func (c *client) PasteElement(ctx context.Context, cmd command.PasteElement) (*service.LinkView, error) {
	return invoke[service.LinkView](ctx, c, cmd)
}

func (c *client) DetachElement(ctx context.Context, cmd command.DetachElement) (*service.DetachResult, error) {
	return invoke[service.DetachResult](ctx, c, cmd)
}

func (c *client) UpdateLink(ctx context.Context, cmd command.UpdateLink) (*service.LinkView, error) {
	return invoke[service.LinkView](ctx, c, cmd)
}

func (c *client) BulkUpdateLinks(ctx context.Context, cmd command.BulkUpdateLinks) (*service.LinksResult, error) {
	return invoke[service.LinksResult](ctx, c, cmd)
}

func (c *client) OrderUpLink(ctx context.Context, cmd command.OrderUpLink) (*service.LinkView, error) {
	return invoke[service.LinkView](ctx, c, cmd)
}

func (c *client) OrderDownLink(ctx context.Context, cmd command.OrderDownLink) (*service.LinkView, error) {
	return invoke[service.LinkView](ctx, c, cmd)
}

func (c *client) SetPrerequisite(ctx context.Context, cmd command.SetPrerequisite) (*service.PrerequisiteResult, error) {
	return invoke[service.PrerequisiteResult](ctx, c, cmd)
}

func (c *client) FillFromLastYear(ctx context.Context, cmd command.FillFromLastYear) (*service.FillResult, error) {
	return invoke[service.FillResult](ctx, c, cmd)
}

func (c *client) DeleteProgramTree(ctx context.Context, cmd command.DeleteProgramTree) (*service.DeleteResult, error) {
	return invoke[service.DeleteResult](ctx, c, cmd)
}
