package discovery

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fanspark/discovery/internal/app"
	"github.com/fanspark/discovery/internal/backend"
	"github.com/fanspark/discovery/internal/config"
)

// Registrar ties the Discovery service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
	cfg    *config.Config
}

// NewRegistrar creates a new Registrar for the Discovery service
func NewRegistrar(appCtx *app.AppContext, cfg *config.Config) *Registrar {
	return &Registrar{appCtx: appCtx, cfg: cfg}
}

// Register attaches the Discovery service routes to the router
func (r *Registrar) Register(router *mux.Router) {
	service := NewDiscoveryService(r.appCtx, r.cfg, backend.NewGormGateway(r.appCtx))
	RegisterRoutes(router, service)
}

// RegisterRoutes mounts the Discovery endpoints for the given service.
// Split out from Register so tests can mount a service with a fake backend.
func RegisterRoutes(router *mux.Router, service *Service) {
	router.HandleFunc("/v1/discovery/sessions", service.HandleStartSession).Methods(http.MethodPost)
	router.HandleFunc("/v1/discovery/sessions/{id}", service.HandleEndSession).Methods(http.MethodDelete)
	router.HandleFunc("/v1/discovery/sessions/{id}/current", service.HandleCurrent).Methods(http.MethodGet)
	router.HandleFunc("/v1/discovery/sessions/{id}/swipes", service.HandleSwipe).Methods(http.MethodPost)
	router.HandleFunc("/v1/discovery/sessions/{id}/rewind", service.HandleRewind).Methods(http.MethodPost)
	router.HandleFunc("/v1/discovery/sessions/{id}/filters", service.HandleSetFilters).Methods(http.MethodPut)
	router.HandleFunc("/v1/discovery/sessions/{id}/refresh", service.HandleRefresh).Methods(http.MethodPost)
	router.HandleFunc("/v1/discovery/sessions/{id}/events", service.HandleEvents).Methods(http.MethodGet)
}
