package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/archivistapp/archivist-server/internal/api"
	"github.com/archivistapp/archivist-server/internal/auth"
	"github.com/archivistapp/archivist-server/internal/config"
	"github.com/archivistapp/archivist-server/internal/logger"
	"github.com/archivistapp/archivist-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Library:  do.MustInvoke[*service.LibraryService](i),
		Lending:  do.MustInvoke[*service.LendingService](i),
		Settings: do.MustInvoke[*service.SettingsService](i),
		Admin:    do.MustInvoke[*service.AdminService](i),
		Import:   do.MustInvoke[*service.ImportService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokenService, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
