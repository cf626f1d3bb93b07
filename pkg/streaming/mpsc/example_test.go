package mpsc_test

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
)

// Example demonstrates the basic send / receive / close cycle.
func Example() {
	tx, rx := mpsc.New[string]()

	tx.Send("hello")
	tx.Send("world")
	tx.Close()

	for {
		v, ok := rx.Receive()
		if !ok {
			fmt.Println("end of stream")
			break
		}
		fmt.Println(v)
	}

	// Output:
	// hello
	// world
	// end of stream
}

// Example_fanIn demonstrates several producers feeding one consumer.
func Example_fanIn() {
	tx, rx := mpsc.New[int]()

	var wg sync.WaitGroup
	for p := 0; p < 3; p++ {
		wg.Add(1)
		go func(s *mpsc.Sender[int]) {
			defer wg.Done()
			defer s.Close()
			for i := 0; i < 3; i++ {
				s.Send(p*10 + i)
			}
		}(tx.Clone())
	}
	tx.Close()

	var got []int
	for v := range rx.All() {
		got = append(got, v)
	}
	wg.Wait()

	sort.Ints(got)
	fmt.Println(got)

	// Output:
	// [0 1 2 10 11 12 20 21 22]
}

// Example_batching shows that a burst is drained with a single lock
// acquisition on the receiving side.
func Example_batching() {
	tx, rx := mpsc.New[int]()
	defer tx.Close()

	for i := 0; i < 5; i++ {
		tx.Send(i)
	}

	first, _ := rx.Receive()
	fmt.Println("first:", first, "buffered:", rx.Buffered())

	for rx.Buffered() > 0 {
		_, _ = rx.Receive()
	}

	stats := rx.Stats()
	fmt.Println("received:", stats.Received, "lock acquisitions:", stats.LockAcquisitions)

	// Output:
	// first: 0 buffered: 4
	// received: 5 lock acquisitions: 1
}
