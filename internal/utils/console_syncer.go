package utils

import (
	"io"
	"sync"

	"go.uber.org/zap/zapcore"
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// consoleSyncer serializes console writes and pushes buffered output through after every entry so console
// lines interleave correctly with output printed directly to the same writer.
type consoleSyncer struct {
	mutex  sync.Mutex
	writer io.Writer
}

func newConsoleSyncer(writer io.Writer) zapcore.WriteSyncer {
	if existing, isSyncer := writer.(*consoleSyncer); isSyncer {
		return existing
	}
	return &consoleSyncer{writer: writer}
}

func (console *consoleSyncer) Write(data []byte) (int, error) {
	console.mutex.Lock()
	defer console.mutex.Unlock()

	written, writeError := console.writer.Write(data)
	if writeError != nil {
		return written, writeError
	}
	return written, console.flush()
}

func (console *consoleSyncer) Sync() error {
	console.mutex.Lock()
	defer console.mutex.Unlock()

	if flushError := console.flush(); flushError != nil {
		return flushError
	}
	if syncTarget, canSync := console.writer.(syncer); canSync {
		return syncTarget.Sync()
	}
	return nil
}

func (console *consoleSyncer) flush() error {
	if flushTarget, canFlush := console.writer.(flusher); canFlush {
		return flushTarget.Flush()
	}
	return nil
}
