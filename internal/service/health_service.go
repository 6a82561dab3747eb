package service

import (
	"context"
	"sort"
	"time"

	"rocketshoes-cart/internal/logger"

	"go.opentelemetry.io/otel"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Pinger is anything that can report whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	deps map[string]Pinger
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"data"`
}

var HealthServiceTracer = otel.Tracer("HealthService")

func NewHealthService(deps map[string]Pinger) *HealthService {
	return &HealthService{deps: deps}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ctx, span := HealthServiceTracer.Start(ctx, "HealthService.Check")
	defer span.End()
	logger.Info(ctx, "Service")

	status := HealthStatus{Status: StatusUp, Components: make(map[string]string, len(s.deps))}

	names := make([]string, 0, len(s.deps))
	for name := range s.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.deps[name].Ping(pingCtx)
		cancel()

		if err != nil {
			status.Components[name] = StatusDown
			status.Status = StatusDown
			continue
		}
		status.Components[name] = StatusUp
	}

	return status
}
