package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medicine-inventory-service/internal/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
}

// HealthCheck always answers 200; the payload carries the store status.
func HealthCheck(serviceName string, p Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "healthy"
		if err := p.Ping(ctx); err != nil {
			storeStatus = "unhealthy"
			log.Warnf("Health check store ping failed: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Store:     storeStatus,
		})
	}
}
