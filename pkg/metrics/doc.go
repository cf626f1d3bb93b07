// Package metrics provides Prometheus instrumentation for flowchan components.
//
// Components accept a metrics.Config and, when Enabled, record into a
// shared *Registry obtained from Resolve:
//
//	reg := prometheus.NewRegistry()
//	tx, rx, err := mpsc.NewWithConfig[Event](mpsc.Config{
//		Name:    "events",
//		Metrics: metrics.Config{Enabled: true, Registry: reg},
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// Channel metrics (label "channel"):
//
//   - flowchan_channel_sent_total
//   - flowchan_channel_received_total
//   - flowchan_channel_senders
//   - flowchan_channel_pending
//   - flowchan_channel_buffered (set by the stats reporter)
//   - flowchan_channel_batch_size (histogram of items per queue swap)
//   - flowchan_channel_waits_total
//   - flowchan_channel_closures_total (extra label "side")
//
// Writer metrics (label "writer"): flushes_total, bytes_written_total,
// errors_total. Bridge metrics (labels "bridge", "direction"): items_total,
// errors_total. Reporter metrics (label "reporter"): runs_total.
//
// The batch size histogram is the most direct view of the receiver's
// amortization: under bursty load most observations land in the high buckets
// and received_total grows much faster than the swap count.
package metrics
