package dynamo

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	key := strKey("user_id", "u1")
	av, ok := key["user_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "u1", av.Value)
}

func TestChunkKeys_Empty(t *testing.T) {
	assert.Nil(t, chunkKeys("user_id", nil))
}

func TestChunkKeys_SingleChunk(t *testing.T) {
	chunks := chunkKeys("user_id", []string{"a", "b", "c"})
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 3)
}

func TestChunkKeys_SplitsAtBatchLimit(t *testing.T) {
	ids := make([]string, batchGetLimit+5)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	chunks := chunkKeys("user_id", ids)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], batchGetLimit)
	assert.Len(t, chunks[1], 5)

	// Order preserved across the chunk boundary.
	first := chunks[1][0]["user_id"].(*types.AttributeValueMemberS)
	assert.Equal(t, fmt.Sprintf("u%d", batchGetLimit), first.Value)
}
