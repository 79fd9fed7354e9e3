package pb

import (
	"context"

	"google.golang.org/grpc"
)

// The seven gRPC services BuildGrid implements server-side. Server
// interfaces are implemented by pkg/execution, pkg/bots, pkg/cas,
// pkg/actioncache, pkg/capabilities and pkg/operations; client interfaces are used by
// pkg/client and cmd/buildgrid.

// ExecutionServer/ExecutionClient — build.bazel.remote.execution.v2.Execution.
type ExecutionServer interface {
	Execute(req *ExecuteRequest, stream ExecutionServer_ExecuteServer) error
	WaitExecution(req *WaitExecutionRequest, stream ExecutionServer_ExecuteServer) error
}

// ExecutionServer_ExecuteServer streams Operation updates to the caller.
type ExecutionServer_ExecuteServer interface {
	Send(*Operation) error
	Context() context.Context
}

type ExecutionClient interface {
	Execute(ctx context.Context, req *ExecuteRequest) (ExecutionClient_ExecuteClient, error)
	WaitExecution(ctx context.Context, req *WaitExecutionRequest) (ExecutionClient_ExecuteClient, error)
}

type ExecutionClient_ExecuteClient interface {
	Recv() (*Operation, error)
}

func RegisterExecutionServer(s *grpc.Server, srv ExecutionServer) {
	s.RegisterService(&executionServiceDesc, srv)
}

func NewExecutionClient(cc grpc.ClientConnInterface) ExecutionClient {
	return &executionClient{cc}
}

type executionClient struct{ cc grpc.ClientConnInterface }

func (c *executionClient) Execute(ctx context.Context, req *ExecuteRequest) (ExecutionClient_ExecuteClient, error) {
	stream, err := c.cc.NewStream(ctx, &executionServiceDesc.Streams[0], "/build.bazel.remote.execution.v2.Execution/Execute")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &executionOpStream{stream}, nil
}

func (c *executionClient) WaitExecution(ctx context.Context, req *WaitExecutionRequest) (ExecutionClient_ExecuteClient, error) {
	stream, err := c.cc.NewStream(ctx, &executionServiceDesc.Streams[0], "/build.bazel.remote.execution.v2.Execution/WaitExecution")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &executionOpStream{stream}, nil
}

type executionOpStream struct{ grpc.ClientStream }

func (s *executionOpStream) Recv() (*Operation, error) {
	op := new(Operation)
	if err := s.ClientStream.RecvMsg(op); err != nil {
		return nil, err
	}
	return op, nil
}

var executionServiceDesc = grpc.ServiceDesc{
	ServiceName: "build.bazel.remote.execution.v2.Execution",
	HandlerType: (*ExecutionServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Execute",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				req := new(ExecuteRequest)
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(ExecutionServer).Execute(req, &executionServerStream{stream})
			},
		},
		{
			StreamName:    "WaitExecution",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				req := new(WaitExecutionRequest)
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(ExecutionServer).WaitExecution(req, &executionServerStream{stream})
			},
		},
	},
}

type executionServerStream struct{ grpc.ServerStream }

func (s *executionServerStream) Send(op *Operation) error {
	return s.ServerStream.SendMsg(op)
}

// ContentAddressableStorageServer/Client.
type ContentAddressableStorageServer interface {
	FindMissingBlobs(ctx context.Context, req *FindMissingBlobsRequest) (*FindMissingBlobsResponse, error)
	BatchUpdateBlobs(ctx context.Context, req *BatchUpdateBlobsRequest) (*BatchUpdateBlobsResponse, error)
	BatchReadBlobs(ctx context.Context, req *BatchReadBlobsRequest) (*BatchReadBlobsResponse, error)
	GetTree(req *GetTreeRequest, stream ContentAddressableStorageServer_GetTreeServer) error
}

type ContentAddressableStorageServer_GetTreeServer interface {
	Send(*GetTreeResponse) error
	Context() context.Context
}

type ContentAddressableStorageClient interface {
	FindMissingBlobs(ctx context.Context, req *FindMissingBlobsRequest, opts ...grpc.CallOption) (*FindMissingBlobsResponse, error)
	BatchUpdateBlobs(ctx context.Context, req *BatchUpdateBlobsRequest, opts ...grpc.CallOption) (*BatchUpdateBlobsResponse, error)
	BatchReadBlobs(ctx context.Context, req *BatchReadBlobsRequest, opts ...grpc.CallOption) (*BatchReadBlobsResponse, error)
}

func RegisterContentAddressableStorageServer(s *grpc.Server, srv ContentAddressableStorageServer) {
	s.RegisterService(&casServiceDesc, srv)
}

func NewContentAddressableStorageClient(cc grpc.ClientConnInterface) ContentAddressableStorageClient {
	return &casClient{cc}
}

type casClient struct{ cc grpc.ClientConnInterface }

func (c *casClient) FindMissingBlobs(ctx context.Context, req *FindMissingBlobsRequest, opts ...grpc.CallOption) (*FindMissingBlobsResponse, error) {
	out := new(FindMissingBlobsResponse)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.ContentAddressableStorage/FindMissingBlobs", req, out, opts...)
	return out, err
}

func (c *casClient) BatchUpdateBlobs(ctx context.Context, req *BatchUpdateBlobsRequest, opts ...grpc.CallOption) (*BatchUpdateBlobsResponse, error) {
	out := new(BatchUpdateBlobsResponse)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.ContentAddressableStorage/BatchUpdateBlobs", req, out, opts...)
	return out, err
}

func (c *casClient) BatchReadBlobs(ctx context.Context, req *BatchReadBlobsRequest, opts ...grpc.CallOption) (*BatchReadBlobsResponse, error) {
	out := new(BatchReadBlobsResponse)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.ContentAddressableStorage/BatchReadBlobs", req, out, opts...)
	return out, err
}

var casServiceDesc = grpc.ServiceDesc{
	ServiceName: "build.bazel.remote.execution.v2.ContentAddressableStorage",
	HandlerType: (*ContentAddressableStorageServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FindMissingBlobs",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(FindMissingBlobsRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ContentAddressableStorageServer).FindMissingBlobs(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.ContentAddressableStorage/FindMissingBlobs"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ContentAddressableStorageServer).FindMissingBlobs(ctx, req.(*FindMissingBlobsRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "BatchUpdateBlobs",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(BatchUpdateBlobsRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ContentAddressableStorageServer).BatchUpdateBlobs(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.ContentAddressableStorage/BatchUpdateBlobs"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ContentAddressableStorageServer).BatchUpdateBlobs(ctx, req.(*BatchUpdateBlobsRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "BatchReadBlobs",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(BatchReadBlobsRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ContentAddressableStorageServer).BatchReadBlobs(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.ContentAddressableStorage/BatchReadBlobs"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ContentAddressableStorageServer).BatchReadBlobs(ctx, req.(*BatchReadBlobsRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetTree",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				req := new(GetTreeRequest)
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(ContentAddressableStorageServer).GetTree(req, &casGetTreeServerStream{stream})
			},
		},
	},
}

type casGetTreeServerStream struct{ grpc.ServerStream }

func (s *casGetTreeServerStream) Send(resp *GetTreeResponse) error {
	return s.ServerStream.SendMsg(resp)
}

// ActionCacheServer/Client.
type ActionCacheServer interface {
	GetActionResult(ctx context.Context, req *GetActionResultRequest) (*ActionResult, error)
	UpdateActionResult(ctx context.Context, req *UpdateActionResultRequest) (*ActionResult, error)
}

type ActionCacheClient interface {
	GetActionResult(ctx context.Context, req *GetActionResultRequest, opts ...grpc.CallOption) (*ActionResult, error)
	UpdateActionResult(ctx context.Context, req *UpdateActionResultRequest, opts ...grpc.CallOption) (*ActionResult, error)
}

func RegisterActionCacheServer(s *grpc.Server, srv ActionCacheServer) {
	s.RegisterService(&actionCacheServiceDesc, srv)
}

func NewActionCacheClient(cc grpc.ClientConnInterface) ActionCacheClient {
	return &actionCacheClient{cc}
}

type actionCacheClient struct{ cc grpc.ClientConnInterface }

func (c *actionCacheClient) GetActionResult(ctx context.Context, req *GetActionResultRequest, opts ...grpc.CallOption) (*ActionResult, error) {
	out := new(ActionResult)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.ActionCache/GetActionResult", req, out, opts...)
	return out, err
}

func (c *actionCacheClient) UpdateActionResult(ctx context.Context, req *UpdateActionResultRequest, opts ...grpc.CallOption) (*ActionResult, error) {
	out := new(ActionResult)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.ActionCache/UpdateActionResult", req, out, opts...)
	return out, err
}

var actionCacheServiceDesc = grpc.ServiceDesc{
	ServiceName: "build.bazel.remote.execution.v2.ActionCache",
	HandlerType: (*ActionCacheServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetActionResult",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(GetActionResultRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ActionCacheServer).GetActionResult(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.ActionCache/GetActionResult"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ActionCacheServer).GetActionResult(ctx, req.(*GetActionResultRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "UpdateActionResult",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(UpdateActionResultRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ActionCacheServer).UpdateActionResult(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.ActionCache/UpdateActionResult"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ActionCacheServer).UpdateActionResult(ctx, req.(*UpdateActionResultRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
}

// ByteStreamServer/Client.
type ByteStreamServer interface {
	Read(req *ReadRequest, stream ByteStreamServer_ReadServer) error
	Write(stream ByteStreamServer_WriteServer) error
	QueryWriteStatus(ctx context.Context, req *QueryWriteStatusRequest) (*QueryWriteStatusResponse, error)
}

type ByteStreamServer_ReadServer interface {
	Send(*ReadResponse) error
	Context() context.Context
}

type ByteStreamServer_WriteServer interface {
	Recv() (*WriteRequest, error)
	SendAndClose(*WriteResponse) error
	Context() context.Context
}

type ByteStreamClient interface {
	Read(ctx context.Context, req *ReadRequest) (ByteStreamClient_ReadClient, error)
	Write(ctx context.Context) (ByteStreamClient_WriteClient, error)
	QueryWriteStatus(ctx context.Context, req *QueryWriteStatusRequest, opts ...grpc.CallOption) (*QueryWriteStatusResponse, error)
}

type ByteStreamClient_ReadClient interface {
	Recv() (*ReadResponse, error)
}

type ByteStreamClient_WriteClient interface {
	Send(*WriteRequest) error
	CloseAndRecv() (*WriteResponse, error)
}

func RegisterByteStreamServer(s *grpc.Server, srv ByteStreamServer) {
	s.RegisterService(&byteStreamServiceDesc, srv)
}

func NewByteStreamClient(cc grpc.ClientConnInterface) ByteStreamClient {
	return &byteStreamClient{cc}
}

type byteStreamClient struct{ cc grpc.ClientConnInterface }

func (c *byteStreamClient) Read(ctx context.Context, req *ReadRequest) (ByteStreamClient_ReadClient, error) {
	stream, err := c.cc.NewStream(ctx, &byteStreamServiceDesc.Streams[0], "/google.bytestream.ByteStream/Read")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &byteStreamReadClient{stream}, nil
}

type byteStreamReadClient struct{ grpc.ClientStream }

func (s *byteStreamReadClient) Recv() (*ReadResponse, error) {
	resp := new(ReadResponse)
	if err := s.ClientStream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *byteStreamClient) Write(ctx context.Context) (ByteStreamClient_WriteClient, error) {
	stream, err := c.cc.NewStream(ctx, &byteStreamServiceDesc.Streams[1], "/google.bytestream.ByteStream/Write")
	if err != nil {
		return nil, err
	}
	return &byteStreamWriteClient{stream}, nil
}

type byteStreamWriteClient struct{ grpc.ClientStream }

func (s *byteStreamWriteClient) Send(req *WriteRequest) error {
	return s.ClientStream.SendMsg(req)
}

func (s *byteStreamWriteClient) CloseAndRecv() (*WriteResponse, error) {
	if err := s.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	resp := new(WriteResponse)
	if err := s.ClientStream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *byteStreamClient) QueryWriteStatus(ctx context.Context, req *QueryWriteStatusRequest, opts ...grpc.CallOption) (*QueryWriteStatusResponse, error) {
	out := new(QueryWriteStatusResponse)
	err := c.cc.Invoke(ctx, "/google.bytestream.ByteStream/QueryWriteStatus", req, out, opts...)
	return out, err
}

var byteStreamServiceDesc = grpc.ServiceDesc{
	ServiceName: "google.bytestream.ByteStream",
	HandlerType: (*ByteStreamServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "QueryWriteStatus",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(QueryWriteStatusRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ByteStreamServer).QueryWriteStatus(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.bytestream.ByteStream/QueryWriteStatus"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(ByteStreamServer).QueryWriteStatus(ctx, req.(*QueryWriteStatusRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Read",
			ServerStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				req := new(ReadRequest)
				if err := stream.RecvMsg(req); err != nil {
					return err
				}
				return srv.(ByteStreamServer).Read(req, &byteStreamReadServerStream{stream})
			},
		},
		{
			StreamName:    "Write",
			ClientStreams: true,
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				return srv.(ByteStreamServer).Write(&byteStreamWriteServerStream{stream})
			},
		},
	},
}

type byteStreamReadServerStream struct{ grpc.ServerStream }

func (s *byteStreamReadServerStream) Send(resp *ReadResponse) error {
	return s.ServerStream.SendMsg(resp)
}

type byteStreamWriteServerStream struct{ grpc.ServerStream }

func (s *byteStreamWriteServerStream) Recv() (*WriteRequest, error) {
	req := new(WriteRequest)
	if err := s.ServerStream.RecvMsg(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *byteStreamWriteServerStream) SendAndClose(resp *WriteResponse) error {
	return s.ServerStream.SendMsg(resp)
}

// BotsServer/Client — google.devtools.remoteworkers.v1test2.Bots.
type BotsServer interface {
	CreateBotSession(ctx context.Context, req *CreateBotSessionRequest) (*BotSession, error)
	UpdateBotSession(ctx context.Context, req *UpdateBotSessionRequest) (*BotSession, error)
}

type BotsClient interface {
	CreateBotSession(ctx context.Context, req *CreateBotSessionRequest, opts ...grpc.CallOption) (*BotSession, error)
	UpdateBotSession(ctx context.Context, req *UpdateBotSessionRequest, opts ...grpc.CallOption) (*BotSession, error)
}

func RegisterBotsServer(s *grpc.Server, srv BotsServer) {
	s.RegisterService(&botsServiceDesc, srv)
}

func NewBotsClient(cc grpc.ClientConnInterface) BotsClient {
	return &botsClient{cc}
}

type botsClient struct{ cc grpc.ClientConnInterface }

func (c *botsClient) CreateBotSession(ctx context.Context, req *CreateBotSessionRequest, opts ...grpc.CallOption) (*BotSession, error) {
	out := new(BotSession)
	err := c.cc.Invoke(ctx, "/google.devtools.remoteworkers.v1test2.Bots/CreateBotSession", req, out, opts...)
	return out, err
}

func (c *botsClient) UpdateBotSession(ctx context.Context, req *UpdateBotSessionRequest, opts ...grpc.CallOption) (*BotSession, error) {
	out := new(BotSession)
	err := c.cc.Invoke(ctx, "/google.devtools.remoteworkers.v1test2.Bots/UpdateBotSession", req, out, opts...)
	return out, err
}

var botsServiceDesc = grpc.ServiceDesc{
	ServiceName: "google.devtools.remoteworkers.v1test2.Bots",
	HandlerType: (*BotsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateBotSession",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(CreateBotSessionRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(BotsServer).CreateBotSession(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.devtools.remoteworkers.v1test2.Bots/CreateBotSession"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(BotsServer).CreateBotSession(ctx, req.(*CreateBotSessionRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "UpdateBotSession",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(UpdateBotSessionRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(BotsServer).UpdateBotSession(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.devtools.remoteworkers.v1test2.Bots/UpdateBotSession"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(BotsServer).UpdateBotSession(ctx, req.(*UpdateBotSessionRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
}

// CapabilitiesServer/Client.
type CapabilitiesServer interface {
	GetCapabilities(ctx context.Context, req *GetCapabilitiesRequest) (*ServerCapabilities, error)
}

type CapabilitiesClient interface {
	GetCapabilities(ctx context.Context, req *GetCapabilitiesRequest, opts ...grpc.CallOption) (*ServerCapabilities, error)
}

func RegisterCapabilitiesServer(s *grpc.Server, srv CapabilitiesServer) {
	s.RegisterService(&capabilitiesServiceDesc, srv)
}

func NewCapabilitiesClient(cc grpc.ClientConnInterface) CapabilitiesClient {
	return &capabilitiesClient{cc}
}

type capabilitiesClient struct{ cc grpc.ClientConnInterface }

func (c *capabilitiesClient) GetCapabilities(ctx context.Context, req *GetCapabilitiesRequest, opts ...grpc.CallOption) (*ServerCapabilities, error) {
	out := new(ServerCapabilities)
	err := c.cc.Invoke(ctx, "/build.bazel.remote.execution.v2.Capabilities/GetCapabilities", req, out, opts...)
	return out, err
}

var capabilitiesServiceDesc = grpc.ServiceDesc{
	ServiceName: "build.bazel.remote.execution.v2.Capabilities",
	HandlerType: (*CapabilitiesServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetCapabilities",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(GetCapabilitiesRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(CapabilitiesServer).GetCapabilities(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/build.bazel.remote.execution.v2.Capabilities/GetCapabilities"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(CapabilitiesServer).GetCapabilities(ctx, req.(*GetCapabilitiesRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
}

// OperationsServer/Client — google.longrunning.Operations (List/Get/Cancel
// only; BuildGrid does not support Delete per spec §4.5).
type OperationsServer interface {
	ListOperations(ctx context.Context, req *ListOperationsRequest) (*ListOperationsResponse, error)
	GetOperation(ctx context.Context, req *GetOperationRequest) (*Operation, error)
	CancelOperation(ctx context.Context, req *CancelOperationRequest) (*Empty, error)
}

type Empty struct{}

type OperationsClient interface {
	ListOperations(ctx context.Context, req *ListOperationsRequest, opts ...grpc.CallOption) (*ListOperationsResponse, error)
	GetOperation(ctx context.Context, req *GetOperationRequest, opts ...grpc.CallOption) (*Operation, error)
	CancelOperation(ctx context.Context, req *CancelOperationRequest, opts ...grpc.CallOption) (*Empty, error)
}

func RegisterOperationsServer(s *grpc.Server, srv OperationsServer) {
	s.RegisterService(&operationsServiceDesc, srv)
}

func NewOperationsClient(cc grpc.ClientConnInterface) OperationsClient {
	return &operationsClient{cc}
}

type operationsClient struct{ cc grpc.ClientConnInterface }

func (c *operationsClient) ListOperations(ctx context.Context, req *ListOperationsRequest, opts ...grpc.CallOption) (*ListOperationsResponse, error) {
	out := new(ListOperationsResponse)
	err := c.cc.Invoke(ctx, "/google.longrunning.Operations/ListOperations", req, out, opts...)
	return out, err
}

func (c *operationsClient) GetOperation(ctx context.Context, req *GetOperationRequest, opts ...grpc.CallOption) (*Operation, error) {
	out := new(Operation)
	err := c.cc.Invoke(ctx, "/google.longrunning.Operations/GetOperation", req, out, opts...)
	return out, err
}

func (c *operationsClient) CancelOperation(ctx context.Context, req *CancelOperationRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	err := c.cc.Invoke(ctx, "/google.longrunning.Operations/CancelOperation", req, out, opts...)
	return out, err
}

var operationsServiceDesc = grpc.ServiceDesc{
	ServiceName: "google.longrunning.Operations",
	HandlerType: (*OperationsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListOperations",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(ListOperationsRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(OperationsServer).ListOperations(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.longrunning.Operations/ListOperations"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(OperationsServer).ListOperations(ctx, req.(*ListOperationsRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "GetOperation",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(GetOperationRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(OperationsServer).GetOperation(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.longrunning.Operations/GetOperation"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(OperationsServer).GetOperation(ctx, req.(*GetOperationRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "CancelOperation",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(CancelOperationRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(OperationsServer).CancelOperation(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/google.longrunning.Operations/CancelOperation"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(OperationsServer).CancelOperation(ctx, req.(*CancelOperationRequest))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
}
