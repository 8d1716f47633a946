package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCodeMapsKnownOutcomes(t *testing.T) {
	assert.Equal(t, codes.NotFound, CodeKeyNotFound.GRPCCode())
	assert.Equal(t, codes.Aborted, CodeConcurrentModify.GRPCCode())
	assert.Equal(t, codes.Unavailable, CodeLeaderChanged.GRPCCode())
	assert.Equal(t, codes.InvalidArgument, CodeIllegalData.GRPCCode())
	assert.Equal(t, codes.Internal, CodeKVEngineError.GRPCCode())
}

func TestStorageErrorGRPCStatusIsRecognizedByStatusFromError(t *testing.T) {
	err := &StorageError{Code: CodeLeaderChanged, Leader: "node-2:9000"}
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.Unavailable, st.Code())
}
