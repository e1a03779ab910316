package utils

import (
	"context"
	"sync"
	"time"
)

// Probe checks one external collaborator. A nil return means healthy.
type Probe func(ctx context.Context) error

// HealthStatus is a point-in-time snapshot of every registered probe,
// keyed by probe name (mongo, cache, authCache, events).
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

const healthCheckInterval = 60 * time.Second

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor runs all probes once immediately, then every minute,
// keeping the in-memory snapshot served by the health endpoint current.
func StartHealthMonitor(probes map[string]Probe) {
	go func() {
		ctx := context.Background()
		storeSnapshot(runProbes(ctx, probes))

		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for range ticker.C {
			storeSnapshot(runProbes(ctx, probes))
		}
	}()
}

func runProbes(ctx context.Context, probes map[string]Probe) HealthStatus {
	services := make(map[string]bool, len(probes))
	for name, probe := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		services[name] = probe(probeCtx) == nil
		cancel()
	}
	return HealthStatus{Services: services, CheckedAt: time.Now()}
}

func storeSnapshot(status HealthStatus) {
	mu.Lock()
	currentHealth = status
	mu.Unlock()
}
