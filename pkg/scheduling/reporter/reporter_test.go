package reporter

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
	"github.com/vnykmshr/flowchan/pkg/metrics"
	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
)

type staticSource mpsc.Stats

func (s staticSource) Stats() mpsc.Stats { return mpsc.Stats(s) }

func TestNewValidatesSchedule(t *testing.T) {
	valid := []string{"", "@every 1s", "@hourly", "*/5 * * * *", "0 */5 * * * *"}
	for _, expr := range valid {
		r, err := New(Config{Schedule: expr})
		require.NoError(t, err, expr)
		<-r.Stop().Done()
	}

	for _, expr := range []string{"not a schedule", "* * *", "@every"} {
		_, err := New(Config{Schedule: expr})
		require.Error(t, err, expr)
		assert.True(t, gferrors.IsValidationError(err), expr)
	}
}

func TestRegister(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)

	require.NoError(t, r.Register("a", staticSource{}))
	err = r.Register("a", staticSource{})
	require.Error(t, err, "duplicate name")
	assert.True(t, gferrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "already registered")
	assert.Error(t, r.Register("", staticSource{}), "empty name")
	assert.Error(t, r.Register("b", nil), "nil source")

	var rx *mpsc.Receiver[int]
	assert.Error(t, r.Register("c", rx), "typed nil source")

	assert.True(t, r.Unregister("a"))
	assert.False(t, r.Unregister("a"))
	assert.Empty(t, r.Report())
}

func TestReportSnapshotsSortedByName(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	var reported []Snapshot
	r, err := New(Config{
		Name:     "test",
		Logger:   logger,
		OnReport: func(s []Snapshot) { reported = s },
	})
	require.NoError(t, err)

	require.NoError(t, r.Register("zeta", staticSource{Sent: 3, Received: 1, Pending: 2, Senders: 1}))
	require.NoError(t, r.Register("alpha", staticSource{Sent: 7, Received: 7}))

	snaps := r.Report()
	require.Len(t, snaps, 2)
	assert.Equal(t, "alpha", snaps[0].Name)
	assert.Equal(t, "zeta", snaps[1].Name)
	assert.Equal(t, int64(3), snaps[1].Stats.Sent)
	assert.Equal(t, 2, snaps[1].Stats.Pending)
	assert.Equal(t, snaps, reported)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "channel stats", entries[0].Message)
	assert.Equal(t, "alpha", entries[0].Data["channel"])
	assert.Equal(t, "test", entries[0].Data["reporter"])
	assert.Equal(t, int64(3), entries[1].Data["sent"])
}

func TestReportLiveChannel(t *testing.T) {
	r, err := New(Config{})
	require.NoError(t, err)

	tx, rx := mpsc.New[string]()
	require.NoError(t, r.Register("live", rx))

	tx.Send("a")
	tx.Send("b")
	tx.Send("c")

	v, ok := rx.Receive()
	require.True(t, ok)
	require.Equal(t, "a", v)

	snap := r.Report()[0]
	assert.Equal(t, int64(3), snap.Stats.Sent)
	assert.Equal(t, int64(1), snap.Stats.Received)
	assert.Equal(t, 2, snap.Stats.Buffered)
	assert.Equal(t, 0, snap.Stats.Pending)
	assert.Equal(t, 1, snap.Stats.Senders)

	require.NoError(t, tx.Close())
	for range rx.All() {
	}
	snap = r.Report()[0]
	assert.True(t, snap.Stats.SendersClosed)
	assert.Equal(t, int64(3), snap.Stats.Received)
}

func TestReportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := metrics.Config{Enabled: true, Registry: reg, Namespace: "reporter_test"}

	r, err := New(Config{Name: "m", Metrics: mc})
	require.NoError(t, err)
	require.NoError(t, r.Register("q", staticSource{Pending: 4, Buffered: 9, Senders: 2}))

	r.Report()
	r.Report()

	m := metrics.Resolve(mc)
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ReporterRuns.WithLabelValues("m")))
	assert.Equal(t, 9.0, promtestutil.ToFloat64(m.ChannelBuffered.WithLabelValues("q")))
	assert.Equal(t, 4.0, promtestutil.ToFloat64(m.ChannelPending.WithLabelValues("q")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ChannelSenders.WithLabelValues("q")))
}

func TestScheduledReports(t *testing.T) {
	reports := make(chan []Snapshot, 4)
	r, err := New(Config{
		Schedule: "@every 1s",
		OnReport: func(s []Snapshot) {
			select {
			case reports <- s:
			default:
			}
		},
	})
	require.NoError(t, err)
	require.NoError(t, r.Register("tick", staticSource{Sent: 1}))

	assert.True(t, r.Next().IsZero(), "not started")
	r.Start()
	assert.False(t, r.Next().IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Second), r.Next(), time.Second)

	select {
	case s := <-reports:
		require.Len(t, s, 1)
		assert.Equal(t, "tick", s[0].Name)
	case <-time.After(3 * time.Second):
		t.Fatal("no scheduled report")
	}

	ctx := r.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Stop did not complete")
	}
}
