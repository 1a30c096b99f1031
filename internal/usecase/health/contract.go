package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks a collaborator's availability (LLM, embedding provider).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
