// Package api wires the gRPC service implementations onto the network,
// translates typed errors to gRPC status codes at the RPC boundary (spec
// §7), and exposes the HTTP health/metrics endpoints. Server/listener
// shape (TLS credentials built once, grpc.NewServer with an interceptor
// option, Start/Stop pair) is adapted from the teacher repo's
// pkg/api/server.go.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/metrics"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// Services bundles the seven gRPC service implementations a Server wires
// up. Any field left nil is simply not registered, so a deployment can
// run a CAS-only or Bots-only instance (spec §6 lets `instances` name a
// subset of services).
type Services struct {
	Execution    pb.ExecutionServer
	CAS          pb.ContentAddressableStorageServer
	ActionCache  pb.ActionCacheServer
	ByteStream   pb.ByteStreamServer
	Bots         pb.BotsServer
	Capabilities pb.CapabilitiesServer
	Operations   pb.OperationsServer
}

// Server hosts one gRPC listener (TLS optional) serving Services.
type Server struct {
	grpc   *grpc.Server
	logger zerolog.Logger
}

// NewServer constructs a Server. tlsConfig may be nil for a plaintext
// listener (e.g. a trusted loopback dev setup); a production deployment
// always supplies one built from pkg/security.ServerTLSConfig.
func NewServer(services Services, tlsConfig *tls.Config) *Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(StatusInterceptor()),
		grpc.StreamInterceptor(StatusStreamInterceptor()),
	}
	if tlsConfig != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	grpcServer := grpc.NewServer(opts...)

	if services.Execution != nil {
		pb.RegisterExecutionServer(grpcServer, services.Execution)
	}
	if services.CAS != nil {
		pb.RegisterContentAddressableStorageServer(grpcServer, services.CAS)
	}
	if services.ActionCache != nil {
		pb.RegisterActionCacheServer(grpcServer, services.ActionCache)
	}
	if services.ByteStream != nil {
		pb.RegisterByteStreamServer(grpcServer, services.ByteStream)
	}
	if services.Bots != nil {
		pb.RegisterBotsServer(grpcServer, services.Bots)
	}
	if services.Capabilities != nil {
		pb.RegisterCapabilitiesServer(grpcServer, services.Capabilities)
	}
	if services.Operations != nil {
		pb.RegisterOperationsServer(grpcServer, services.Operations)
	}

	return &Server{grpc: grpcServer, logger: log.WithComponent("api")}
}

// Start listens on addr and blocks serving gRPC until the listener fails
// or Stop is called.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info().Str("addr", addr).Msg("gRPC server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// HTTPServer serves /health, /ready, /live, /metrics, adapted from the teacher's
// pkg/api.HealthServer but delegating to pkg/metrics' already-ported
// handlers rather than re-implementing the JSON response shape here.
type HTTPServer struct {
	mux *http.ServeMux
}

// NewHTTPServer builds the observability HTTP server.
func NewHTTPServer() *HTTPServer {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())
	return &HTTPServer{mux: mux}
}

// Start blocks serving HTTP on addr.
func (h *HTTPServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// grpcCode maps a bgerrors.Kind to the gRPC status code spec §7 pins it
// to. KindUnknown, which bgerrors.KindOf reports for errors carrying no
// Kind, falls through to the default case and maps to UNKNOWN (2).
func grpcCode(kind bgerrors.Kind) uint32 {
	switch kind {
	case bgerrors.KindInvalidArgument:
		return 3 // INVALID_ARGUMENT
	case bgerrors.KindNotFound:
		return 5 // NOT_FOUND
	case bgerrors.KindOutOfRange:
		return 11 // OUT_OF_RANGE
	case bgerrors.KindUpdateNotAllowed:
		return 9 // FAILED_PRECONDITION
	case bgerrors.KindCancelled:
		return 1 // CANCELLED
	case bgerrors.KindRetryExceeded:
		return 13 // INTERNAL
	case bgerrors.KindBackendUnavailable:
		return 14 // UNAVAILABLE
	default:
		return 2 // UNKNOWN
	}
}
