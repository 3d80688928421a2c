package tradelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_WriteSnapshotAndFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.log")
	l, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, l.WriteSnapshot("BTC-USD", []byte(`{"sequence":1}`)))
	require.NoError(t, l.WriteFrame([]byte(`{"type":"heartbeat"}`)))
	require.NoError(t, l.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "B BTC-USD {\"sequence\":1}\nW {\"type\":\"heartbeat\"}\n", string(contents))
}

func TestLog_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.log")
	l1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l1.WriteFrame([]byte(`{"a":1}`)))
	require.NoError(t, l1.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l2.WriteFrame([]byte(`{"a":2}`)))
	require.NoError(t, l2.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "W {\"a\":1}\nW {\"a\":2}\n", string(contents))
}

func TestWriteSnapshotIfEnabled_NilLogIsNoop(t *testing.T) {
	assert.NoError(t, WriteSnapshotIfEnabled(nil, "BTC-USD", []byte(`{}`)))
	assert.NoError(t, WriteFrameIfEnabled(nil, []byte(`{}`)))
}
