package server

import (
	"context"
	"time"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// CorrelationHeader carries the correlation id of a request, in grpc metadata and http headers.
const CorrelationHeader = "x-correlation-id"

func UnaryGrpcRequestTimeInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		reqTime := time.Since(start)
		logrus.Infof("request time: %v: %v", info.FullMethod, reqTime)
		return resp, err
	}
}

// UnaryCorrelationInterceptor attaches the correlation id of the caller, or a
// new one, to the context given to the bus and echoes it in the response header.
func UnaryCorrelationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(CorrelationHeader); len(values) > 0 {
				id = values[0]
			}
		}
		if id == "" {
			id = uuid.New().String()
		}
		if err := grpc.SetHeader(ctx, metadata.Pairs(CorrelationHeader, id)); err != nil {
			logrus.Debugf("failed to set correlation header: %v", err)
		}
		return handler(bus.WithCorrelationID(ctx, id), req)
	}
}

func UnaryRequestTimeInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req interface{},
		reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		reqTime := time.Since(start)
		logrus.Debugf("request time: %v: %v", method, reqTime)
		return err
	}
}
