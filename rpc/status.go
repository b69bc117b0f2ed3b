package rpc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[api.ErrorKind]codes.Code{
	api.KindAuthorization: codes.PermissionDenied,
	api.KindValidation:    codes.InvalidArgument,
	api.KindSignature:     codes.Unauthenticated,
	api.KindStateConflict: codes.FailedPrecondition,
	api.KindStorage:       codes.Internal,
}

// ToStatus converts a service error into a gRPC status error carrying the
// original message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var e *api.Error
	if errors.As(err, &e) {
		if code, ok := kindCodes[e.Kind]; ok {
			return status.Error(code, e.Msg)
		}
	}
	switch errors.Cause(err) {
	case context.Canceled:
		return status.Error(codes.Canceled, err.Error())
	case context.DeadlineExceeded:
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Unknown, err.Error())
}

// FromStatus is the inverse of ToStatus: known codes become *api.Error
// values that compare equal to the server side sentinels.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for kind, code := range kindCodes {
		if st.Code() == code {
			return api.NewError(kind, "%s", st.Message())
		}
	}
	return err
}

// ErrorInterceptor translates handler errors for the wire.
func ErrorInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		logger.Debug("request failed", "method", info.FullMethod, "error", err)
		return nil, ToStatus(err)
	}
	return resp, nil
}

// StreamErrorInterceptor is ErrorInterceptor for streaming calls.
func StreamErrorInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := handler(srv, ss); err != nil {
		logger.Debug("stream failed", "method", info.FullMethod, "error", err)
		return ToStatus(err)
	}
	return nil
}
