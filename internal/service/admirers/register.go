package admirers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fanspark/discovery/internal/app"
)

// Registrar ties the Admirers service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Admirers service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Admirers service routes to the router
func (r *Registrar) Register(router *mux.Router) {
	service := NewAdmirersService(r.appCtx)
	router.HandleFunc("/v1/users/{id}/admirers", service.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id}/admirers/count", service.HandleCount).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id}/matches", service.HandleMatches).Methods(http.MethodGet)
}
