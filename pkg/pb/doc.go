/*
Package pb defines the wire message and service-interface shapes for the
Remote Execution API (REAPI), the Remote Workers API (RWAPI), ByteStream
and LongRunningOperations — the seven gRPC services (Execution, CAS,
ActionCache, ByteStream, Bots, Capabilities, Operations) BuildGrid
implements server-side.

These types stand in for protoc-generated code. BuildGrid's spec treats the
protobuf/RPC wire codec as "assumed available" and explicitly out of scope;
no protobuf compiler is available in this environment, so the message
shapes below are hand-authored to mirror the upstream REAPI/RWAPI schemas
(field names and nesting match googleapis/remote-execution-apis), and
pkg/api/codec.go registers a grpc/encoding.Codec that marshals them with
encoding/json instead of a generated protobuf codec. Every call site reads
exactly like generated-stub usage (pb.NewExecutionClient(conn),
pb.RegisterExecutionServer(grpcServer, srv)).

One simplification from the real schema: google.protobuf.Any-wrapped
Operation.metadata/response fields are typed directly as
*ExecuteOperationMetadata / *ExecuteResponse rather than a generic Any,
since this server only ever packs those two message types.
*/
package pb
