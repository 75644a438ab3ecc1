package api

import (
	"github.com/archivistapp/archivist-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	Library  *service.LibraryService
	Lending  *service.LendingService
	Settings *service.SettingsService
	Admin    *service.AdminService
	Import   *service.ImportService
}
