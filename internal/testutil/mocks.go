package testutil

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// ErrSimulated is returned by MockWriter when it is told to fail.
var ErrSimulated = errors.New("simulated error")

// MockWriter is a test io.Writer that can simulate delays, failures and
// short writes, and counts Write calls.
type MockWriter struct {
	mu          sync.Mutex
	buf         bytes.Buffer
	writeDelay  time.Duration
	errorOnNth  int
	failNext    int
	shortWrites int
	writeCount  int
}

// NewMockWriter creates a new MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write implements io.Writer with the configured behavior.
func (mw *MockWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.writeCount++

	if mw.writeDelay > 0 {
		time.Sleep(mw.writeDelay)
	}

	if mw.failNext > 0 {
		mw.failNext--
		return 0, ErrSimulated
	}

	if mw.errorOnNth > 0 && mw.writeCount == mw.errorOnNth {
		return 0, ErrSimulated
	}

	if mw.shortWrites > 0 && len(p) > mw.shortWrites {
		return mw.buf.Write(p[:mw.shortWrites])
	}

	return mw.buf.Write(p)
}

// String returns the current buffer contents.
func (mw *MockWriter) String() string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.buf.String()
}

// Len returns the current buffer length.
func (mw *MockWriter) Len() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.buf.Len()
}

// WriteCount returns the number of Write calls.
func (mw *MockWriter) WriteCount() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.writeCount
}

// SetWriteDelay configures a delay for each write operation.
func (mw *MockWriter) SetWriteDelay(delay time.Duration) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.writeDelay = delay
}

// SetErrorOnNth configures the writer to fail the nth Write call.
func (mw *MockWriter) SetErrorOnNth(n int) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.errorOnNth = n
}

// FailNext makes the next n Write calls fail.
func (mw *MockWriter) FailNext(n int) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.failNext = n
}

// SetShortWrites caps every Write at n bytes without returning an error.
func (mw *MockWriter) SetShortWrites(n int) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.shortWrites = n
}

// Reset clears the buffer and all configured behavior.
func (mw *MockWriter) Reset() {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.buf.Reset()
	mw.writeCount = 0
	mw.errorOnNth = 0
	mw.failNext = 0
	mw.shortWrites = 0
	mw.writeDelay = 0
}
