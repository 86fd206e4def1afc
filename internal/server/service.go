package server

import (
	"context"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/rpc"
	"google.golang.org/grpc"
)

// ProgramTreeServiceServer serves every rpc by invoking its command.
type ProgramTreeServiceServer interface {
	Invoke(ctx context.Context, cmd command.Command) (any, error)
}

// ProgramTreeServer forwards the rpcs to the message bus.
type ProgramTreeServer struct {
	bus *bus.MessageBus
}

func NewProgramTreeServer(b *bus.MessageBus) *ProgramTreeServer {
	return &ProgramTreeServer{bus: b}
}

func (s *ProgramTreeServer) Invoke(ctx context.Context, cmd command.Command) (any, error) {
	result, err := s.bus.Invoke(ctx, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	return result, nil
}

// RegisterProgramTreeServiceServer registers srv on s for every method of rpc.Methods.
func RegisterProgramTreeServiceServer(s grpc.ServiceRegistrar, srv ProgramTreeServiceServer) {
	s.RegisterService(serviceDesc(), srv)
}

func serviceDesc() *grpc.ServiceDesc {
	methods := make([]grpc.MethodDesc, 0, len(rpc.Methods))
	for _, m := range rpc.Methods {
		methods = append(methods, grpc.MethodDesc{
			MethodName: m.Name,
			Handler:    methodHandler(m),
		})
	}
	return &grpc.ServiceDesc{
		ServiceName: rpc.ServiceName,
		HandlerType: (*ProgramTreeServiceServer)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "programtree/v1/program_tree.json",
	}
}

// methodHandler has the signature of the handlers generated by protoc-gen-go-grpc.
func methodHandler(m rpc.Method) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		cmd := m.New()
		if err := dec(cmd); err != nil {
			return nil, err
		}
		server := srv.(ProgramTreeServiceServer)
		if interceptor == nil {
			return server.Invoke(ctx, cmd)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: rpc.FullMethod(m.Name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return server.Invoke(ctx, req.(command.Command))
		}
		return interceptor(ctx, cmd, info, handler)
	}
}
