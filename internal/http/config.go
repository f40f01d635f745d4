package http

import (
	"github.com/pagemark/pagemark/internal/database"
	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/database/preferences"
	"github.com/pagemark/pagemark/internal/events"
	"github.com/pagemark/pagemark/internal/reader"
	"github.com/pagemark/pagemark/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in NewRouter
// for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Library     *library.Repository
	Annotations *annotations.Repository
	Preferences *preferences.Repository

	// Highlight grouping view model
	ReaderService *reader.Service

	// Event dispatch
	Bus *events.Bus

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
