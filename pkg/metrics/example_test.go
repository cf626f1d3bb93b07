package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Example_customRegistry demonstrates sharing one Prometheus registry.
func Example_customRegistry() {
	reg := prometheus.NewRegistry()
	config := Config{Enabled: true, Registry: reg}

	a := Resolve(config)
	b := Resolve(config)

	a.ChannelSent.WithLabelValues("events").Add(3)
	fmt.Println("same registry:", a == b)

	families, _ := reg.Gather()
	for _, mf := range families {
		if mf.GetName() == "flowchan_channel_sent_total" {
			fmt.Println(mf.GetName(), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}

	// Output:
	// same registry: true
	// flowchan_channel_sent_total 3
}

// Example_configuration demonstrates default and disabled configurations.
func Example_configuration() {
	defaultConfig := DefaultConfig()
	fmt.Printf("Default enabled: %v\n", defaultConfig.Enabled)
	fmt.Printf("Default namespace: %s\n", defaultConfig.Namespace)

	disabled := Config{Enabled: false}
	fmt.Printf("Disabled resolves to nil: %v\n", Resolve(disabled) == nil)

	// Output:
	// Default enabled: true
	// Default namespace: flowchan
	// Disabled resolves to nil: true
}
