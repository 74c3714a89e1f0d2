package http

import (
	"net/http"

	"github.com/mrlokans/bookscanner/internal/covers"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Records  RecordStore
	Sessions SessionStore

	// Optional
	CoverCache     *covers.Cache
	Database       Pinger
	Counter        RecordCounter
	Deletions      DeletionRecorder
	MetricsHandler http.Handler

	Version string
}
