// Package liveness periodically probes every registered connection to catch
// half-open sockets that transport-level close events never surface.
package liveness

import (
	"log"
	"time"

	"clinic-backoffice-api/internal/registry"
)

// DefaultInterval is how often the sweep runs.
const DefaultInterval = 30 * time.Second

// Monitor sweeps the registry on a fixed interval. A connection that has not
// acknowledged the previous probe by the next sweep is terminated and
// unregistered through the normal cleanup path.
type Monitor struct {
	reg      *registry.Registry
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// New creates a monitor for the registry. interval <= 0 falls back to
// DefaultInterval.
func New(reg *registry.Registry, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		reg:      reg,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Sweep runs one probe cycle. Exported so tests can drive it directly.
func (m *Monitor) Sweep() {
	for _, c := range m.reg.Connections() {
		if !c.Alive() {
			// No acknowledgement since the previous sweep: half-open socket.
			log.Printf("liveness: terminating unresponsive connection %s", c.ID())
			c.Close()
			m.reg.Unregister(c)
			continue
		}
		c.SetAlive(false)
		if !c.Probe() {
			// Write failed; the read loop will observe the error and clean
			// up, or the next sweep reaps it via the cleared flag.
			log.Printf("liveness: probe write failed for %s", c.ID())
		}
	}
}
