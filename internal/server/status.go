package server

import (
	"context"
	"errors"
	"sort"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/service"
	"github.com/emrgen/programtree/internal/store"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps the errors of the bus to grpc statuses. Business rule
// violations are listed in a PreconditionFailure detail.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, bus.ErrNoHandler):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, tree.ErrProgramTreeNotFound),
		errors.Is(err, tree.ErrNodeNotFound),
		errors.Is(err, tree.ErrLinkNotFound),
		errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case tree.IsBusinessError(err):
		st := status.New(codes.FailedPrecondition, err.Error())
		if detailed, derr := st.WithDetails(&errdetails.PreconditionFailure{Violations: violations(err)}); derr == nil {
			st = detailed
		}
		return st.Err()
	}

	logrus.Errorf("internal error: %v", err)
	return status.Error(codes.Internal, err.Error())
}

func violations(err error) []*errdetails.PreconditionFailure_Violation {
	var bulk *service.BulkUpdateLinkError
	if errors.As(err, &bulk) {
		keys := make([]string, 0, len(bulk.Errors))
		for key := range bulk.Errors {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		result := make([]*errdetails.PreconditionFailure_Violation, 0, len(keys))
		for _, key := range keys {
			result = append(result, &errdetails.PreconditionFailure_Violation{
				Type: "LINK", Subject: key, Description: bulk.Errors[key].Error(),
			})
		}
		return result
	}

	var multiple *tree.MultipleBusinessErrors
	if errors.As(err, &multiple) {
		result := make([]*errdetails.PreconditionFailure_Violation, 0, len(multiple.Errors))
		for _, message := range multiple.Messages() {
			result = append(result, &errdetails.PreconditionFailure_Violation{Type: "BUSINESS", Description: message})
		}
		return result
	}

	return []*errdetails.PreconditionFailure_Violation{{Type: "BUSINESS", Description: err.Error()}}
}
