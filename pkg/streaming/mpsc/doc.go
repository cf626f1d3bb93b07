/*
Package mpsc provides an unbounded multi-producer, single-consumer channel.

Producers never block: Send appends to a mutex-protected queue and signals a
condition variable. The single consumer blocks in Receive only while the
queue is empty and at least one Sender is still open.

Creating a channel:

	tx, rx := mpsc.New[Event]()

	// With a name, logging and Prometheus metrics
	tx, rx, err := mpsc.NewWithConfig[Event](mpsc.Config{
		Name:    "events",
		Logger:  logger,
		Metrics: metrics.Config{Enabled: true, Registry: reg},
	})

Producers and shutdown:

Every producer goroutine owns its own Sender, obtained with Clone, and closes
it when done. The channel counts live Senders explicitly; when the count
reaches zero and every queued value has been received, Receive reports
end-of-stream (ok == false) and keeps doing so.

	for i := 0; i < workers; i++ {
		go func(tx *mpsc.Sender[Event]) {
			defer tx.Close()
			for ev := range source(i) {
				tx.Send(ev)
			}
		}(tx.Clone())
	}
	tx.Close() // the original handle is not used by any producer

	for ev := range rx.All() {
		handle(ev)
	}

Forgetting to close a Sender keeps the channel open forever, the same way a
Go channel that is never closed keeps a range loop waiting.

Batching:

The Receiver keeps a private local buffer. When it is empty, Receive takes
the lock once and swaps the whole shared queue into the local buffer, so a
burst of N sends costs the consumer a single lock acquisition. Buffered
reports how many values can be received without touching the lock.

Ordering:

Values from a single Sender are received in the order they were sent.
Values from different Senders interleave in the order their Send calls
acquired the lock.

Limitations:

There is no backpressure. If the consumer stops receiving, the queue grows
without bound. Receive cannot be canceled or timed out; close the Senders to
release a blocked consumer.

Closing the Receiver does not affect Senders: they keep sending without
blocking and the values are never observed.
*/
package mpsc
