package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./pagemark.db"

	// DefaultExportDir is the default directory for markdown exports
	DefaultExportDir = "./exports"
)
