package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthResponse reports database reachability and the persisted record
// count. Records is omitted when no counter is wired or counting failed.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Records *int64            `json:"records,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      Pinger
	counter RecordCounter
	version string
}

// NewHealthController accepts nil for db or counter; the matching check then
// reports "not configured" without affecting the overall status.
func NewHealthController(db Pinger, counter RecordCounter, version string) *HealthController {
	return &HealthController{db: db, counter: counter, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	resp := HealthResponse{
		Status:  statusHealthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, 2),
	}

	resp.Checks["database"] = runCheck(ctx, &resp, func(ctx context.Context) error {
		if h.db == nil {
			return errNotConfigured
		}
		return h.db.Ping(ctx)
	})

	resp.Checks["records"] = runCheck(ctx, &resp, func(ctx context.Context) error {
		if h.counter == nil {
			return errNotConfigured
		}
		n, err := h.counter.Count(ctx)
		if err == nil {
			resp.Records = &n
		}
		return err
	})

	code := http.StatusOK
	if resp.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

type healthError string

func (e healthError) Error() string { return string(e) }

const errNotConfigured = healthError("not configured")

// runCheck runs fn and renders its result, marking resp unhealthy on failure.
func runCheck(ctx context.Context, resp *HealthResponse, fn func(context.Context) error) string {
	switch err := fn(ctx); {
	case err == nil:
		return "ok"
	case errors.Is(err, errNotConfigured):
		return err.Error()
	default:
		resp.Status = statusUnhealthy
		return "error: " + err.Error()
	}
}
