package utils

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleSyncerFlushesBufferedWriter(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriterSize(&destination, 4096)

	writeSyncer := newConsoleSyncer(bufferedWriter)
	written, writeError := writeSyncer.Write([]byte("==> Verify release\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 19, written)
	require.Equal(testInstance, "==> Verify release\n", destination.String())
	require.NoError(testInstance, writeSyncer.Sync())

	require.Same(testInstance, writeSyncer, newConsoleSyncer(writeSyncer))
}
