package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter copies formatted lines to its sinks from a single goroutine,
// so slow sinks do not stall handlers. A nil entry on the queue is a flush
// marker.
type asyncWriter struct {
	lines   chan []byte
	flushed chan error
	stopped chan struct{}
	close   sync.Once
	flushMu sync.Mutex

	sinks []*bufio.Writer

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushed: make(chan error, 1),
		stopped: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.stopped)
	for line := range w.lines {
		if line == nil {
			w.flushed <- w.flushSinks()
			continue
		}
		for _, sink := range w.sinks {
			if _, err := sink.Write(line); err != nil {
				w.fail(err)
			}
		}
		// Flush opportunistically once the queue is idle.
		if len(w.lines) == 0 {
			if err := w.flushSinks(); err != nil {
				w.fail(err)
			}
		}
	}
	if err := w.flushSinks(); err != nil {
		w.fail(err)
	}
}

// Write queues a copy of p. It blocks when the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush waits until every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	select {
	case <-w.stopped:
		return w.firstErr()
	default:
	}
	w.flushMu.Lock()
	defer w.flushMu.Unlock()
	w.lines <- nil
	return errors.Join(<-w.flushed, w.firstErr())
}

// Close drains the queue and returns the first write error, if any.
func (w *asyncWriter) Close() error {
	w.close.Do(func() { close(w.lines) })
	<-w.stopped
	return w.firstErr()
}

func (w *asyncWriter) flushSinks() error {
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
