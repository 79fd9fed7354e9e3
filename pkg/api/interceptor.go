package api

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/metrics"
)

// StatusInterceptor is BuildGrid's only error-translation point (spec §7:
// "only the outermost RPC layer converts to status codes"). Every
// component below pkg/api returns a *bgerrors.Error or a plain error;
// this interceptor is what turns that into a gRPC status, and is also
// where request-count/duration metrics are recorded, adapted from the
// teacher's ReadOnlyInterceptor shape (a single UnaryServerInterceptor
// wrapping every registered method).
func StatusInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		timer := metrics.NewTimer()
		method := methodName(info.FullMethod)

		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			code = codes.Code(grpcCode(bgerrors.KindOf(err)))
			err = status.Error(code, err.Error())
		}

		metrics.APIRequestsTotal.WithLabelValues(method, code.String()).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, method)

		return resp, err
	}
}

// StatusStreamInterceptor is StatusInterceptor's streaming counterpart,
// for Execute/WaitExecution/GetTree/Read/Write: error translation works
// the same way since a stream handler's return error is what the gRPC
// runtime turns into the RPC's terminal status, just with no single
// response message to time against.
func StatusStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		timer := metrics.NewTimer()
		method := methodName(info.FullMethod)

		err := handler(srv, ss)

		code := codes.OK
		if err != nil {
			code = codes.Code(grpcCode(bgerrors.KindOf(err)))
			err = status.Error(code, err.Error())
		}

		metrics.APIRequestsTotal.WithLabelValues(method, code.String()).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, method)

		return err
	}
}

func methodName(fullMethod string) string {
	parts := strings.Split(fullMethod, "/")
	return parts[len(parts)-1]
}
