package mpsc

// Stats is a point-in-time view of a channel.
type Stats struct {
	// Sent is the total number of values enqueued by all Senders.
	Sent int64

	// Received is the total number of values returned by Receive.
	Received int64

	// Senders is the number of live Sender handles.
	Senders int

	// Pending is the number of values waiting in the shared queue.
	Pending int

	// Buffered is the number of values in the Receiver's local buffer.
	Buffered int

	// LockAcquisitions counts how often Receive had to take the channel
	// lock. Values served from the local buffer do not count.
	LockAcquisitions int64

	// Swaps counts how often the shared queue was moved into the local buffer.
	Swaps int64

	// Waits counts how often Receive blocked on the condition variable.
	Waits int64

	// SendersClosed is true once every Sender has been closed.
	SendersClosed bool

	// ReceiverClosed is true once Receiver.Close has been called.
	ReceiverClosed bool
}

// Stats returns channel statistics. It is safe to call from any goroutine,
// for example a periodic reporter running beside the consumer.
func (r *Receiver[T]) Stats() Stats {
	sh := r.shared

	sh.mu.Lock()
	stats := Stats{
		Sent:             sh.sent,
		Senders:          sh.senders,
		Pending:          sh.queue.Length(),
		LockAcquisitions: sh.lockAcquisitions,
		Swaps:            sh.swaps,
		Waits:            sh.waits,
		SendersClosed:    sh.senders == 0,
		ReceiverClosed:   sh.receiverClosed,
	}
	sh.mu.Unlock()

	stats.Received = r.received.Load()
	stats.Buffered = int(r.buffered.Load())
	return stats
}

// Name returns the configured channel name.
func (r *Receiver[T]) Name() string {
	return r.shared.name
}
