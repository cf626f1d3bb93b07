package mpsc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/flowchan/pkg/metrics"
)

// instruments holds metric children curried with the channel name so the hot
// path never does a label lookup. A nil *instruments records nothing.
type instruments struct {
	sent      prometheus.Counter
	received  prometheus.Counter
	senders   prometheus.Gauge
	pending   prometheus.Gauge
	batchSize prometheus.Observer
	waits     prometheus.Counter
	closures  *prometheus.CounterVec
	name      string
}

func newInstruments(name string, config metrics.Config) *instruments {
	reg := metrics.Resolve(config)
	if reg == nil {
		return nil
	}
	return &instruments{
		sent:      reg.ChannelSent.WithLabelValues(name),
		received:  reg.ChannelReceived.WithLabelValues(name),
		senders:   reg.ChannelSenders.WithLabelValues(name),
		pending:   reg.ChannelPending.WithLabelValues(name),
		batchSize: reg.ChannelBatchSize.WithLabelValues(name),
		waits:     reg.ChannelWaits.WithLabelValues(name),
		closures:  reg.ChannelClosures,
		name:      name,
	}
}

func (in *instruments) onSend() {
	if in == nil {
		return
	}
	in.sent.Inc()
}

// setPending must be called with the channel lock held so the gauge follows
// the order of queue mutations.
func (in *instruments) setPending(n int) {
	if in == nil {
		return
	}
	in.pending.Set(float64(n))
}

func (in *instruments) onSwap(batch int) {
	if in == nil {
		return
	}
	in.batchSize.Observe(float64(batch))
}

func (in *instruments) onReceive() {
	if in == nil {
		return
	}
	in.received.Inc()
}

func (in *instruments) onWait() {
	if in == nil {
		return
	}
	in.waits.Inc()
}

func (in *instruments) setSenders(n int) {
	if in == nil {
		return
	}
	in.senders.Set(float64(n))
}

func (in *instruments) onClose(side string) {
	if in == nil {
		return
	}
	in.closures.WithLabelValues(in.name, side).Inc()
}
