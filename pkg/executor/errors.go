package executor

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code names one outcome of an Execute call.
type Code int

const (
	// CodeOK is never set on a returned error; it exists so the zero
	// Code is not mistaken for a real failure in logging.
	CodeOK Code = iota
	CodeKeyNotFound
	CodeConcurrentModify
	CodeLeaderChanged
	CodeFilteredOut
	CodeIllegalData
	CodeNoDefaultAndNotNullable
	CodeInvalidFieldValue
	CodeInvalidDefault
	CodeIndexLocked
	CodeIndexNotFound
	CodeSchemaTagNotFound
	CodeSchemaEdgeNotFound
	CodeKVEngineError
)

func (c Code) String() string {
	switch c {
	case CodeKeyNotFound:
		return "KeyNotFound"
	case CodeConcurrentModify:
		return "ConcurrentModify"
	case CodeLeaderChanged:
		return "LeaderChanged"
	case CodeFilteredOut:
		return "FilteredOut"
	case CodeIllegalData:
		return "IllegalData"
	case CodeNoDefaultAndNotNullable:
		return "NoDefaultAndNotNullable"
	case CodeInvalidFieldValue:
		return "InvalidFieldValue"
	case CodeInvalidDefault:
		return "InvalidDefault"
	case CodeIndexLocked:
		return "IndexLocked"
	case CodeIndexNotFound:
		return "IndexNotFound"
	case CodeSchemaTagNotFound:
		return "SchemaTagNotFound"
	case CodeSchemaEdgeNotFound:
		return "SchemaEdgeNotFound"
	case CodeKVEngineError:
		return "KVEngineError"
	default:
		return "OK"
	}
}

// StorageError is the one error type the executor returns for every
// named failure, so callers can switch on Code instead of string-matching
// or maintaining a type per error kind. Leader is only meaningful when
// Code is CodeLeaderChanged.
type StorageError struct {
	Code   Code
	Leader string
	Reason string
}

func (e *StorageError) Error() string {
	if e.Code == CodeLeaderChanged {
		return fmt.Sprintf("executor: %s (leader hint %q)", e.Code, e.Leader)
	}
	if e.Reason == "" {
		return fmt.Sprintf("executor: %s", e.Code)
	}
	return fmt.Sprintf("executor: %s: %s", e.Code, e.Reason)
}

func storageErr(code Code, reason string) *StorageError {
	return &StorageError{Code: code, Reason: reason}
}

// GRPCCode maps a result code to the grpc/codes value an embedding
// transport would use to answer a caller, without this package taking
// any dependency on a concrete transport.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeOK, CodeFilteredOut:
		return codes.OK
	case CodeKeyNotFound, CodeIndexNotFound, CodeSchemaTagNotFound, CodeSchemaEdgeNotFound:
		return codes.NotFound
	case CodeConcurrentModify:
		return codes.Aborted
	case CodeLeaderChanged, CodeIndexLocked:
		return codes.Unavailable
	case CodeIllegalData, CodeNoDefaultAndNotNullable, CodeInvalidFieldValue, CodeInvalidDefault:
		return codes.InvalidArgument
	case CodeKVEngineError:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// GRPCStatus lets errors.As/status.FromError recognize a *StorageError
// directly, the way grpc-go's status package expects a GRPCStatus()
// method on wrapped errors.
func (e *StorageError) GRPCStatus() *status.Status {
	return status.New(e.Code.GRPCCode(), e.Error())
}

// leaderHinter is implemented by replicated-KV errors that carry a
// redirect hint (pkg/replicatedkv.LeaderChangedError), detected with
// errors.As so the executor never imports the adapter package directly.
type leaderHinter interface {
	LeaderHint() string
}
