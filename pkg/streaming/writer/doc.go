/*
Package writer provides asynchronous buffered writing for Go applications.

AsyncWriter accepts writes from any number of goroutines without blocking and
hands them to one background goroutine over an mpsc channel. That goroutine
owns the buffer, so writers never contend on it; they only take the
channel's short queue lock.

# Quick Start

	file, _ := os.Create("output.txt")
	w := writer.New(file)
	defer w.Close()

	w.WriteString("Hello, async world!")
	w.Flush(context.Background())

Because AsyncWriter is an io.Writer it can sit behind a logger:

	logger.SetOutput(w)

# Configuration

	w, err := writer.NewWithConfig(underlying, writer.Config{
		Name:          "audit",
		BufferSize:    64 * 1024,   // flush once 64KB accumulate
		FlushInterval: time.Second, // and at least once per second
		MaxRetries:    3,           // retry failed or short writes
		RetryDelay:    100 * time.Millisecond,
	})

# Ordering and Flush

Writes from one goroutine reach the underlying writer in order. Flush enqueues
a marker behind the caller's earlier writes and waits for it, so when Flush
returns everything that goroutine wrote before has been handed to the
underlying writer.

# Errors

Write only fails once the writer is closed (ErrWriterClosed). Failures of the
underlying writer surface through Flush, Close, Config.OnError and
Stats().ErrorCount. A failed flush drops its bytes rather than retrying them
forever.

# Memory

The queue is unbounded. A writer that is much faster than the underlying
io.Writer grows memory; watch Stats().Channel.Pending or the
flowchan_channel_pending metric.
*/
package writer
