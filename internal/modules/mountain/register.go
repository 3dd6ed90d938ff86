// Package mountain wires the mountain visibility feature into the server.
package mountain

import (
	"net/http"

	"github.com/tlanclos/isthemountainout/internal/metrics"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/controller"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/service"
)

func RegisterFeature(mux *http.ServeMux, svc *service.Service, m *metrics.Metrics) {
	mountainController := controller.NewMountainController(svc)
	mountainController.RegisterRoutes(mux, m)
}
