package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookscanner/internal/covers"
	"github.com/mrlokans/bookscanner/internal/database"
	"github.com/mrlokans/bookscanner/internal/database/books"
	"github.com/mrlokans/bookscanner/internal/http"
	"github.com/mrlokans/bookscanner/internal/metadata"
	"github.com/mrlokans/bookscanner/internal/metrics"
	"github.com/mrlokans/bookscanner/internal/records"
	"github.com/mrlokans/bookscanner/internal/scan"
	"github.com/mrlokans/bookscanner/internal/scheduler"
	"github.com/mrlokans/bookscanner/internal/selection"
	"github.com/mrlokans/bookscanner/internal/sessions"
	"github.com/mrlokans/bookscanner/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ records.PersistentStore = (*books.Repository)(nil)

var _ scan.RecordWriter = (*records.Store)(nil)
var _ selection.Deleter = (*records.Store)(nil)
var _ covers.Source = (*records.Store)(nil)
var _ http.RecordStore = (*records.Store)(nil)

var _ http.Pinger = (*database.Database)(nil)
var _ http.RecordCounter = (*books.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ metadata.Provider = (*metadata.GoogleBooksClient)(nil)
var _ metadata.Provider = (*metadata.OpenBDClient)(nil)
var _ metadata.Provider = (*metadata.OpenLibraryClient)(nil)

var _ scan.Resolver = (*metadata.Gateway)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ covers.Enqueuer = (*tasks.Client)(nil)
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
var _ scheduler.Sweeper = (*sessions.Registry)(nil)
var _ http.SessionStore = (*sessions.Registry)(nil)

// =============================================================================
// Metrics
// =============================================================================

var _ scan.Recorder = (*metrics.Metrics)(nil)
var _ http.DeletionRecorder = (*metrics.Metrics)(nil)
