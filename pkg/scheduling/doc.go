/*
Package scheduling provides time-based components for flowchan.

  - reporter: Periodically snapshots channel Stats on a cron schedule, logs
    them and publishes them as Prometheus gauges

Reporter:

	rep, _ := reporter.New(reporter.Config{Schedule: "@every 30s", Logger: logger})
	rep.Register("ingest", rx)
	rep.Start()
	defer func() { <-rep.Stop().Done() }()
*/
package scheduling
