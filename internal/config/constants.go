package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the book catalog database
	DefaultDatabasePath = "./bookscanner.db"
)

// Lookup provider names accepted by LOOKUP_PROVIDER
const (
	ProviderGoogleBooks = "google"
	ProviderOpenBD      = "openbd"
	ProviderOpenLibrary = "openlibrary"
)
