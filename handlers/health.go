package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clearance/portal/database"
)

// HealthCheck reports whether the portal and its local database are up
func (p *Portal) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if database.DB == nil || database.DB.PingContext(ctx) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   formatStamp(p.now()),
	})
}
