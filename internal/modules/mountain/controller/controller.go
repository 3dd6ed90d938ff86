package controller

import (
	"context"
	"net/http"

	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/metrics"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/service"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// MountainService is what the HTTP surface needs from the observation service.
type MountainService interface {
	Observe(ctx context.Context, obs types.Observation, img *imagery.Image) (decision.Decision, error)
	History(limit int) ([]types.HistoryRecord, error)
	Status() (service.Status, error)
}

type MountainController interface {
	RegisterRoutes(mux *http.ServeMux, m *metrics.Metrics)
}

type mountainControllerImpl struct {
	service MountainService
}

func NewMountainController(svc MountainService) MountainController {
	return &mountainControllerImpl{service: svc}
}

func (c *mountainControllerImpl) RegisterRoutes(mux *http.ServeMux, m *metrics.Metrics) {
	mux.Handle("GET /api/history", m.WrapHandler("/api/history", http.HandlerFunc(c.handleHistory)))
	mux.Handle("GET /api/status", m.WrapHandler("/api/status", http.HandlerFunc(c.handleStatus)))
	mux.Handle("POST /api/observations", m.WrapHandler("/api/observations", http.HandlerFunc(c.handleObservation)))
}
