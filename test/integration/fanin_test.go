package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/flowchan/internal/testutil"
	"github.com/vnykmshr/flowchan/pkg/metrics"
	"github.com/vnykmshr/flowchan/pkg/scheduling/reporter"
	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
	"github.com/vnykmshr/flowchan/pkg/streaming/writer"
)

// TestFanInThroughWriter runs producers -> mpsc -> consumer -> AsyncWriter and
// checks every line arrives once, in per-producer order, with metrics and
// reporter snapshots agreeing on the totals.
func TestFanInThroughWriter(t *testing.T) {
	const (
		producers   = 6
		perProducer = 500
		total       = producers * perProducer
	)

	mc := metrics.Config{Enabled: true, Registry: prometheus.NewRegistry(), Namespace: "integration"}

	tx, rx, err := mpsc.NewWithConfig[string](mpsc.Config{Name: "lines", Metrics: mc})
	testutil.AssertNoError(t, err)

	sink := testutil.NewMockWriter()
	w, err := writer.NewWithConfig(sink, writer.Config{Name: "sink", BufferSize: 512, Metrics: mc})
	testutil.AssertNoError(t, err)

	rep, err := reporter.New(reporter.Config{Name: "integration", Metrics: mc})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, rep.Register("lines", rx))

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		ptx := tx.Clone()
		g.Go(func() error {
			defer ptx.Close()
			for i := 0; i < perProducer; i++ {
				ptx.Send(fmt.Sprintf("p%d:%d\n", p, i))
			}
			return nil
		})
	}
	testutil.AssertNoError(t, tx.Close())

	for line := range rx.All() {
		if _, err := w.WriteString(line); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	testutil.AssertNoError(t, g.Wait())

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	testutil.AssertNoError(t, w.Flush(ctx))
	testutil.AssertNoError(t, w.Close())

	lines := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	testutil.AssertEqual(t, len(lines), total)

	next := make([]int, producers)
	for _, line := range lines {
		var p, i int
		if _, err := fmt.Sscanf(line, "p%d:%d", &p, &i); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		if i != next[p] {
			t.Fatalf("producer %d: got %d, want %d", p, i, next[p])
		}
		next[p]++
	}

	snap := rep.Report()
	testutil.AssertEqual(t, len(snap), 1)
	testutil.AssertEqual(t, snap[0].Stats.Sent, int64(total))
	testutil.AssertEqual(t, snap[0].Stats.Received, int64(total))
	testutil.AssertTrue(t, snap[0].Stats.SendersClosed, "all senders closed")
	testutil.AssertTrue(t, snap[0].Stats.Swaps <= snap[0].Stats.Received, "batched receive")

	reg := metrics.Resolve(mc)
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.ChannelSent.WithLabelValues("lines")), float64(total))
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.ChannelReceived.WithLabelValues("lines")), float64(total))
	testutil.AssertEqual(t, promtestutil.ToFloat64(reg.ReporterRuns.WithLabelValues("integration")), 1.0)
	testutil.AssertTrue(t, promtestutil.ToFloat64(reg.WriterFlushes.WithLabelValues("sink")) > 0, "writer flushed")
	testutil.AssertEqual(t,
		promtestutil.ToFloat64(reg.WriterBytesWritten.WithLabelValues("sink")),
		float64(sink.Len()))
}

// TestWriterFlushCanceled checks that a canceled flush does not lose data
// that was already accepted.
func TestWriterFlushCanceled(t *testing.T) {
	sink := testutil.NewMockWriter()
	w, err := writer.NewWithConfig(sink, writer.Config{})
	testutil.AssertNoError(t, err)

	_, err = w.WriteString("accepted\n")
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = w.Flush(ctx)

	testutil.AssertNoError(t, w.Close())
	testutil.AssertEqual(t, sink.String(), "accepted\n")
}
