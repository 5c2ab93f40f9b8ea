// Package metrics wires suipool's meters into a go-metrics registry. Metric
// collection is off by default; it is enabled by the --metrics flag, which is
// sniffed from the command line before flag parsing so that metrics requested
// by package-level variables are real from the start.
package metrics

import (
	"os"
	"strings"

	gometrics "github.com/rcrowley/go-metrics"
)

// Enabled is checked by the constructors below; when false they return
// no-op implementations.
var Enabled = false

// enablerFlags is the CLI flag names to check for metrics activation.
var enablerFlags = []string{"metrics"}

func init() {
	for _, arg := range os.Args {
		flag := strings.TrimLeft(arg, "-")
		for _, enabler := range enablerFlags {
			if !Enabled && flag == enabler {
				Enabled = true
			}
		}
	}
}

// NewCounter constructs a registered counter, or a no-op when metrics are
// disabled.
func NewCounter(name string) gometrics.Counter {
	if !Enabled {
		return gometrics.NilCounter{}
	}
	return gometrics.GetOrRegisterCounter(DefaultConfig.Prefix+name, gometrics.DefaultRegistry)
}

// NewGauge constructs a registered gauge, or a no-op when metrics are
// disabled.
func NewGauge(name string) gometrics.Gauge {
	if !Enabled {
		return gometrics.NilGauge{}
	}
	return gometrics.GetOrRegisterGauge(DefaultConfig.Prefix+name, gometrics.DefaultRegistry)
}

// NewMeter constructs a registered meter, or a no-op when metrics are
// disabled.
func NewMeter(name string) gometrics.Meter {
	if !Enabled {
		return gometrics.NilMeter{}
	}
	return gometrics.GetOrRegisterMeter(DefaultConfig.Prefix+name, gometrics.DefaultRegistry)
}

// NewTimer constructs a registered timer, or a no-op when metrics are
// disabled.
func NewTimer(name string) gometrics.Timer {
	if !Enabled {
		return gometrics.NilTimer{}
	}
	return gometrics.GetOrRegisterTimer(DefaultConfig.Prefix+name, gometrics.DefaultRegistry)
}
