package pb

// FindMissingBlobsRequest/Response — CAS FindMissingBlobs.
type FindMissingBlobsRequest struct {
	InstanceName string   `json:"instance_name,omitempty"`
	BlobDigests  []Digest `json:"blob_digests,omitempty"`
}

type FindMissingBlobsResponse struct {
	MissingBlobDigests []Digest `json:"missing_blob_digests,omitempty"`
}

// BatchUpdateBlobsRequest/Response — CAS BatchUpdateBlobs. Per spec §4.1,
// bulk update is not transactional: each item succeeds or fails
// independently and is reported with its own Status.
type BatchUpdateBlobsRequestItem struct {
	Digest Digest `json:"digest"`
	Data   []byte `json:"data"`
}

type BatchUpdateBlobsRequest struct {
	InstanceName string                        `json:"instance_name,omitempty"`
	Requests     []BatchUpdateBlobsRequestItem `json:"requests,omitempty"`
}

type BatchUpdateBlobsResponseItem struct {
	Digest Digest `json:"digest"`
	Status Status `json:"status"`
}

type BatchUpdateBlobsResponse struct {
	Responses []BatchUpdateBlobsResponseItem `json:"responses,omitempty"`
}

// BatchReadBlobsRequest/Response — CAS BatchReadBlobs.
type BatchReadBlobsRequest struct {
	InstanceName string   `json:"instance_name,omitempty"`
	Digests      []Digest `json:"digests,omitempty"`
}

type BatchReadBlobsResponseItem struct {
	Digest Digest `json:"digest"`
	Data   []byte `json:"data,omitempty"`
	Status Status `json:"status"`
}

type BatchReadBlobsResponse struct {
	Responses []BatchReadBlobsResponseItem `json:"responses,omitempty"`
}

// GetTreeRequest/Response — CAS GetTree.
type GetTreeRequest struct {
	InstanceName string `json:"instance_name,omitempty"`
	RootDigest   Digest `json:"root_digest"`
	PageSize     int32  `json:"page_size,omitempty"`
	PageToken    string `json:"page_token,omitempty"`
}

type GetTreeResponse struct {
	Directories   []Directory `json:"directories,omitempty"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// GetActionResultRequest/UpdateActionResultRequest — ActionCache service.
type GetActionResultRequest struct {
	InstanceName string `json:"instance_name,omitempty"`
	ActionDigest Digest `json:"action_digest"`
}

type UpdateActionResultRequest struct {
	InstanceName string       `json:"instance_name,omitempty"`
	ActionDigest Digest       `json:"action_digest"`
	ActionResult ActionResult `json:"action_result"`
}

// ReadRequest/ReadResponse — ByteStream.Read.
type ReadRequest struct {
	ResourceName string `json:"resource_name"`
	ReadOffset   int64  `json:"read_offset,omitempty"`
	ReadLimit    int64  `json:"read_limit,omitempty"`
}

type ReadResponse struct {
	Data []byte `json:"data,omitempty"`
}

// WriteRequest/WriteResponse — ByteStream.Write.
type WriteRequest struct {
	ResourceName string `json:"resource_name,omitempty"`
	WriteOffset  int64  `json:"write_offset"`
	FinishWrite  bool   `json:"finish_write,omitempty"`
	Data         []byte `json:"data,omitempty"`
}

type WriteResponse struct {
	CommittedSize int64 `json:"committed_size"`
}

type QueryWriteStatusRequest struct {
	ResourceName string `json:"resource_name"`
}

type QueryWriteStatusResponse struct {
	CommittedSize int64 `json:"committed_size"`
	Complete      bool  `json:"complete"`
}

// GetCapabilitiesRequest/ServerCapabilities — Capabilities service.
type GetCapabilitiesRequest struct {
	InstanceName string `json:"instance_name,omitempty"`
}

type CacheCapabilities struct {
	MaxBatchTotalSizeBytes int64  `json:"max_batch_total_size_bytes"`
	SymlinkAbsolutePath    string `json:"symlink_absolute_path_strategy,omitempty"`
}

type ExecutionCapabilities struct {
	ExecEnabled bool `json:"exec_enabled"`
}

type ServerCapabilities struct {
	CacheCapabilities     *CacheCapabilities     `json:"cache_capabilities,omitempty"`
	ExecutionCapabilities *ExecutionCapabilities `json:"execution_capabilities,omitempty"`
	LowAPIVersion         string                 `json:"low_api_version,omitempty"`
	HighAPIVersion        string                 `json:"high_api_version,omitempty"`
}
