package service

import (
	"database/sql"
	"time"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// QueueChecker reports whether the task-queue connection is alive.
type QueueChecker interface {
	IsConnected() bool
}

// HealthStatus is the health check response
type HealthStatus struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checked_at"`
}

// HealthChecker verifies the service's external dependencies.
type HealthChecker struct {
	db    *sql.DB
	queue QueueChecker
}

// NewHealthChecker creates a new health checker. queue may be nil for
// processes without a queue connection.
func NewHealthChecker(db *sql.DB, queue QueueChecker) *HealthChecker {
	return &HealthChecker{
		db:    db,
		queue: queue,
	}
}

// CheckHealth pings the dependencies and aggregates their state.
func (h *HealthChecker) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Status:    StatusHealthy,
		Checks:    map[string]string{},
		CheckedAt: time.Now(),
	}

	if err := h.db.Ping(); err != nil {
		status.Checks["database"] = "disconnected"
		status.Status = StatusUnhealthy
	} else {
		status.Checks["database"] = "connected"
	}

	if h.queue != nil {
		if h.queue.IsConnected() {
			status.Checks["queue"] = "connected"
		} else {
			status.Checks["queue"] = "disconnected"
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		}
	}

	return status
}
