/*
Package streaming groups the data-movement components of flowchan.

  - mpsc: Unbounded channel with any number of Senders and one Receiver
  - writer: Asynchronous writer that buffers data and writes in background
  - redisbridge: Moves channel values to and from a Redis list

Basic usage:

	tx, rx := mpsc.New[[]byte]()
	defer rx.Close()

	w := writer.New(os.Stdout)
	defer w.Close()

	go func() {
		defer tx.Close()
		tx.Send([]byte("hello\n"))
	}()

	for b := range rx.All() {
		w.Write(b)
	}

Sends never block. End-of-stream is reported once every Sender is closed and
the queue is drained.
*/
package streaming
