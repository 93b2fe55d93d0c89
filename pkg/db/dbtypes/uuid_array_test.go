package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDArray_RoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New()}

	val, err := ids.Value()
	require.NoError(t, err)

	var scanned UUIDArray
	require.NoError(t, scanned.Scan(val))
	assert.Equal(t, ids, scanned)
}

func TestUUIDArray_ScanEmpty(t *testing.T) {
	var a UUIDArray
	require.NoError(t, a.Scan("{}"))
	assert.Empty(t, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)
}

func TestUUIDArray_ScanQuotedLiteral(t *testing.T) {
	id := uuid.New()
	var a UUIDArray
	require.NoError(t, a.Scan(`{"`+id.String()+`"}`))
	require.Len(t, a, 1)
	assert.Equal(t, id, a[0])
}

func TestUUIDArray_ScanGarbage(t *testing.T) {
	var a UUIDArray
	assert.Error(t, a.Scan("{not-a-uuid}"))
	assert.Error(t, a.Scan(42))
}
