package clients

import (
	"context"
	"fmt"
)

type HealthResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health queries GET /api/health.
func (h *HTTP) Health(ctx context.Context) (*HealthResp, error) {
	var out HealthResp
	if _, err := h.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &out, nil
}
