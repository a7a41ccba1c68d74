package org

import (
	"log/slog"

	httpadapter "paygrid/contexts/workforce-core/org-service/adapters/http"
	"paygrid/contexts/workforce-core/org-service/adapters/memory"
	"paygrid/contexts/workforce-core/org-service/application"
	"paygrid/contexts/workforce-core/org-service/ports"
)

// Module is the org-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

// NewModule wires the org application service and transport handler.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
