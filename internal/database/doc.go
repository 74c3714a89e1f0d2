// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Driver selection (sqlite, postgres), connection, migrations
//	└── books/           # Book record persistence
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//	repo := books.NewRepository(db.DB)
//	store := records.NewStore(repo)
//
// books.Repository implements records.PersistentStore; nothing above the
// records facade talks to gorm directly.
package database
