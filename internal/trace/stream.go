package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes each accepted event as soon as it is emitted.
type StreamTracer struct {
	filter
	mu     sync.Mutex
	w      io.Writer
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{filter: filter(level), w: w, format: format}
}

// Emit writes ev. Write errors are dropped.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	data := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(data)
	t.mu.Unlock()
}

// Flush flushes buffered writers and syncs files other than the standard
// streams.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	if f, ok := t.w.(*os.File); ok && !isStdStream(f) {
		return f.Sync()
	}
	return nil
}

// Close flushes and closes the writer unless it is a standard stream.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if f, ok := t.w.(*os.File); ok && isStdStream(f) {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func isStdStream(f *os.File) bool {
	return f == os.Stdout || f == os.Stderr
}
