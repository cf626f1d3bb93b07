/*
Package flowchan provides an unbounded multi-producer single-consumer channel
for Go and the plumbing built on top of it.

Streaming (pkg/streaming):
  - mpsc: Unbounded MPSC channel with batched, swap-based receive
  - writer: Async buffered writer fed by an mpsc channel
  - redisbridge: Forward a channel into a Redis list, or pump a list into one

Scheduling (pkg/scheduling):
  - reporter: Cron-scheduled logging and metrics for channel stats

Shared (pkg/common, pkg/metrics):
  - errors, validation: Configuration and operation errors
  - metrics: Prometheus registry shared by every component

Example usage:

	import "github.com/vnykmshr/flowchan/pkg/streaming/mpsc"

	tx, rx := mpsc.New[Event]()
	for i := 0; i < workers; i++ {
		wtx := tx.Clone()
		go produce(wtx) // closes wtx when done
	}
	tx.Close()

	for ev := range rx.All() {
		handle(ev)
	}
*/
package flowchan
