package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookscanner/internal/scan"
	"github.com/mrlokans/bookscanner/internal/sessions"
)

const sessionKey = "scan_session"

// SessionsController exposes the scan coordinator of each session.
type SessionsController struct {
	sessions SessionStore
}

func NewSessionsController(store SessionStore) *SessionsController {
	return &SessionsController{sessions: store}
}

type scanRequest struct {
	ISBN string `json:"isbn" binding:"required"`
}

type modeRequest struct {
	Batch *bool `json:"batch" binding:"required"`
}

type scanResponse struct {
	Outcome scan.Outcome  `json:"outcome"`
	Scan    scan.Snapshot `json:"scan"`
}

type saveResponse struct {
	Saved int           `json:"saved"`
	Scan  scan.Snapshot `json:"scan"`
}

// LoadSession resolves :sid into the request context, answering 404 for
// unknown or expired sessions.
func (sc *SessionsController) LoadSession(c *gin.Context) {
	session, ok := sc.sessions.Get(c.Param("sid"))
	if !ok {
		respondNotFound(c, "session")
		c.Abort()
		return
	}
	c.Set(sessionKey, session)
	c.Next()
}

func sessionFrom(c *gin.Context) *sessions.Session {
	return c.MustGet(sessionKey).(*sessions.Session)
}

// CreateSession opens a scan session.
// POST /api/sessions
func (sc *SessionsController) CreateSession(c *gin.Context) {
	session := sc.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": session.ID})
}

// DeleteSession closes a scan session.
// DELETE /api/sessions/:sid
func (sc *SessionsController) DeleteSession(c *gin.Context) {
	if !sc.sessions.Delete(c.Param("sid")) {
		respondNotFound(c, "session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *SessionsController) GetScan(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).Coordinator.Snapshot())
}

// Detect feeds one decoded barcode to the coordinator. The lookup runs in the
// background; clients poll GetScan for the result.
func (sc *SessionsController) Detect(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "isbn is required")
		return
	}

	coordinator := sessionFrom(c).Coordinator
	outcome := coordinator.OnScanDetected(req.ISBN)

	status := http.StatusAccepted
	if outcome != scan.OutcomeAccepted {
		status = http.StatusOK
	}
	c.JSON(status, scanResponse{Outcome: outcome, Scan: coordinator.Snapshot()})
}

func (sc *SessionsController) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "batch is required")
		return
	}

	coordinator := sessionFrom(c).Coordinator
	coordinator.SetBatchMode(*req.Batch)
	c.JSON(http.StatusOK, coordinator.Snapshot())
}

func (sc *SessionsController) Reset(c *gin.Context) {
	coordinator := sessionFrom(c).Coordinator
	coordinator.ResetState()
	c.JSON(http.StatusOK, coordinator.Snapshot())
}

// SaveCurrent stores the book shown in the success state.
// POST /api/sessions/:sid/save
func (sc *SessionsController) SaveCurrent(c *gin.Context) {
	coordinator := sessionFrom(c).Coordinator
	saved, err := coordinator.SaveCurrent(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "save current book")
		return
	}

	n := 0
	if saved {
		n = 1
	}
	c.JSON(http.StatusOK, saveResponse{Saved: n, Scan: coordinator.Snapshot()})
}

// SaveBuffer stores every buffered book.
// POST /api/sessions/:sid/save-buffer
func (sc *SessionsController) SaveBuffer(c *gin.Context) {
	coordinator := sessionFrom(c).Coordinator
	n, err := coordinator.SaveBuffered(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "save buffered books")
		return
	}
	c.JSON(http.StatusOK, saveResponse{Saved: n, Scan: coordinator.Snapshot()})
}
