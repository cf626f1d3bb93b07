/*
Package reporter logs and exports the state of mpsc channels on a cron schedule.

Register any number of receivers by name; on every tick the reporter snapshots
their Stats, writes one structured log entry per channel and updates the
channel gauges of the shared metrics registry:

	rep, err := reporter.New(reporter.Config{
		Schedule: "@every 5s",
		Logger:   logger,
		Metrics:  metrics.Config{Enabled: true},
	})
	if err != nil {
		return err
	}
	rep.Register("ingest", rx)
	rep.Start()
	defer func() { <-rep.Stop().Done() }()

Schedules use the standard five-field cron format with an optional leading
seconds field, or descriptors such as @hourly and @every 1m30s.
*/
package reporter
