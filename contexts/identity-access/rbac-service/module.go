package rbac

import (
	"log/slog"
	"time"

	httpadapter "paygrid/contexts/identity-access/rbac-service/adapters/http"
	"paygrid/contexts/identity-access/rbac-service/adapters/memory"
	"paygrid/contexts/identity-access/rbac-service/application"
	"paygrid/contexts/identity-access/rbac-service/ports"
	tenancymemory "paygrid/contexts/identity-access/tenancy-service/adapters/memory"
	tenancyports "paygrid/contexts/identity-access/tenancy-service/ports"
)

// Module is the rbac-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository      ports.Repository
	PermissionCache tenancyports.PermissionCache
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	CacheTTL        time.Duration
	Logger          *slog.Logger
}

// NewModule wires the RBAC application service and transport handler.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repository:      deps.Repository,
		PermissionCache: deps.PermissionCache,
		Clock:           deps.Clock,
		IDGenerator:     deps.IDGenerator,
		CacheTTL:        deps.CacheTTL,
		Logger:          deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:      store,
		PermissionCache: tenancymemory.NewCache(),
		Clock:           store,
		IDGenerator:     store,
		CacheTTL:        5 * time.Minute,
		Logger:          logger,
	})
	module.Store = store
	return module
}
