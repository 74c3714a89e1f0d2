package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Error codes returned alongside the human-readable message. Not-found codes
// are derived from the resource name, e.g. "session_not_found".
const (
	CodeInvalidRequest = "invalid_request"
	CodeInternal       = "internal"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidRequest})
}

// respondNotFound reports a missing session or record.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: resource + " not found",
		Code:  resource + "_not_found",
	})
}

// respondInternalError logs err and answers with a generic 500; the cause is
// never sent to the client.
func respondInternalError(c *gin.Context, err error, op string) {
	log.Printf("Internal error (%s): %v", op, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
}

// parseIDParam reads a record id from the route. On failure it has already
// written a 400 and returns false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
