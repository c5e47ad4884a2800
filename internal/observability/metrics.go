// Package observability holds the prometheus registration helpers shared by the frames and eop packages.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register registers the collector, or returns the collector already registered under the same
// descriptor. Several managers may then share one registry.
func Register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
