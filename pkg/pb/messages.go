package pb

import "time"

// Digest is a pair (hash, size_bytes) identifying a blob by content.
type Digest struct {
	Hash      string `json:"hash"`
	SizeBytes int64  `json:"size_bytes"`
}

// Property is a single platform name=value requirement.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Platform is a set of Properties a worker must satisfy to accept a job.
type Platform struct {
	Properties []Property `json:"properties,omitempty"`
}

// Satisfies reports whether worker's declared properties satisfy every
// requirement in p (every required name=value pair must appear in worker).
func (p *Platform) Satisfies(worker *Platform) bool {
	if p == nil || len(p.Properties) == 0 {
		return true
	}
	if worker == nil {
		return false
	}
	have := make(map[string]map[string]bool)
	for _, prop := range worker.Properties {
		if have[prop.Name] == nil {
			have[prop.Name] = make(map[string]bool)
		}
		have[prop.Name][prop.Value] = true
	}
	for _, req := range p.Properties {
		if !have[req.Name][req.Value] {
			return false
		}
	}
	return true
}

// Command describes the argv/environment of a hermetic action.
type Command struct {
	Arguments         []string          `json:"arguments,omitempty"`
	EnvironmentVars   map[string]string `json:"environment_variables,omitempty"`
	OutputFiles       []string          `json:"output_files,omitempty"`
	OutputDirectories []string          `json:"output_directories,omitempty"`
	WorkingDirectory  string            `json:"working_directory,omitempty"`
	Platform          *Platform         `json:"platform,omitempty"`
}

// Action is a structured message describing a hermetic command plus inputs.
type Action struct {
	CommandDigest   Digest    `json:"command_digest"`
	InputRootDigest Digest    `json:"input_root_digest"`
	Platform        *Platform `json:"platform,omitempty"`
	Timeout         string    `json:"timeout,omitempty"` // duration string, e.g. "30s"
	DoNotCache      bool      `json:"do_not_cache,omitempty"`
}

// FileNode is a file referenced from a Directory by digest.
type FileNode struct {
	Name         string `json:"name"`
	Digest       Digest `json:"digest"`
	IsExecutable bool   `json:"is_executable,omitempty"`
}

// DirectoryNode is a child directory referenced from a Directory by digest.
type DirectoryNode struct {
	Name   string `json:"name"`
	Digest Digest `json:"digest"`
}

// SymlinkNode is a symlink entry within a Directory.
type SymlinkNode struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Directory is one level of a Merkle input tree.
type Directory struct {
	Files       []FileNode      `json:"files,omitempty"`
	Directories []DirectoryNode `json:"directories,omitempty"`
	Symlinks    []SymlinkNode   `json:"symlinks,omitempty"`
}

// Tree is the recursive directory structure returned by GetTree: a root
// plus every transitively referenced child Directory, resolved.
type Tree struct {
	Root     *Directory  `json:"root,omitempty"`
	Children []Directory `json:"children,omitempty"`
}

// OutputFile is a produced file, referenced by digest.
type OutputFile struct {
	Path         string `json:"path"`
	Digest       Digest `json:"digest"`
	IsExecutable bool   `json:"is_executable,omitempty"`
}

// OutputDirectory is a produced directory, referenced as a Tree digest.
type OutputDirectory struct {
	Path       string `json:"path"`
	TreeDigest Digest `json:"tree_digest"`
}

// ExecutedActionMetadata carries execution timestamps.
type ExecutedActionMetadata struct {
	Worker                 string    `json:"worker,omitempty"`
	QueuedTimestamp        time.Time `json:"queued_timestamp,omitempty"`
	WorkerStartTimestamp   time.Time `json:"worker_start_timestamp,omitempty"`
	WorkerCompletedTimestamp time.Time `json:"worker_completed_timestamp,omitempty"`
}

// ActionResult is the output of executing an Action.
type ActionResult struct {
	OutputFiles       []OutputFile      `json:"output_files,omitempty"`
	OutputDirectories []OutputDirectory `json:"output_directories,omitempty"`
	ExitCode          int32             `json:"exit_code"`
	StdoutRaw         []byte            `json:"stdout_raw,omitempty"`
	StdoutDigest      *Digest           `json:"stdout_digest,omitempty"`
	StderrRaw         []byte            `json:"stderr_raw,omitempty"`
	StderrDigest      *Digest           `json:"stderr_digest,omitempty"`
	ExecutionMetadata *ExecutedActionMetadata `json:"execution_metadata,omitempty"`
}

// ExecuteStage mirrors ExecuteOperationMetadata.Stage (spec §4.5).
type ExecuteStage int32

const (
	StageUnknown ExecuteStage = iota
	StageCacheCheck
	StageQueued
	StageExecuting
	StageCompleted
)

func (s ExecuteStage) String() string {
	switch s {
	case StageCacheCheck:
		return "CACHE_CHECK"
	case StageQueued:
		return "QUEUED"
	case StageExecuting:
		return "EXECUTING"
	case StageCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// ExecuteOperationMetadata is packed into Operation.metadata.
type ExecuteOperationMetadata struct {
	Stage              ExecuteStage `json:"stage"`
	ActionDigest       Digest       `json:"action_digest"`
	StdoutStreamName   string       `json:"stdout_stream_name,omitempty"`
	StderrStreamName   string       `json:"stderr_stream_name,omitempty"`
}

// Status is a minimal google.rpc.Status analogue: a code and message.
type Status struct {
	Code    int32  `json:"code"`
	Message string `json:"message,omitempty"`
}

// ExecuteResponse is packed into Operation.response once done.
type ExecuteResponse struct {
	Result       *ActionResult `json:"result,omitempty"`
	CachedResult bool          `json:"cached_result,omitempty"`
	Status       *Status       `json:"status,omitempty"`
}

// Operation is the long-running-operation handle exposed to clients.
type Operation struct {
	Name     string                    `json:"name"`
	Metadata *ExecuteOperationMetadata `json:"metadata,omitempty"`
	Done     bool                      `json:"done"`
	Response *ExecuteResponse          `json:"response,omitempty"`
	Error    *Status                   `json:"error,omitempty"`
}

// ExecutionPolicy carries scheduling hints for a submitted Action. Lower
// Priority values are dispatched first (spec §3, §4.6).
type ExecutionPolicy struct {
	Priority int32 `json:"priority,omitempty"`
}

// ExecuteRequest is the request to Execution.Execute.
type ExecuteRequest struct {
	InstanceName    string           `json:"instance_name,omitempty"`
	ActionDigest    Digest           `json:"action_digest"`
	SkipCacheLookup bool             `json:"skip_cache_lookup,omitempty"`
	ExecutionPolicy *ExecutionPolicy `json:"execution_policy,omitempty"`
}

// WaitExecutionRequest is the request to Execution.WaitExecution.
type WaitExecutionRequest struct {
	Name string `json:"name"`
}

// ListOperationsRequest/Response implement the LongRunningOperations surface.
type ListOperationsRequest struct {
	Name     string `json:"name,omitempty"`
	Filter   string `json:"filter,omitempty"`
	PageSize int32  `json:"page_size,omitempty"`
}

type ListOperationsResponse struct {
	Operations []*Operation `json:"operations,omitempty"`
}

type GetOperationRequest struct {
	Name string `json:"name"`
}

type CancelOperationRequest struct {
	Name string `json:"name"`
}
