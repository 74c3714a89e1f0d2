package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid id","code":"invalid_request"}`, w.Body.String())
}

func TestParseIDParam_Zero(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "0"}}

	_, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseIDParam_Negative(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	id, ok := parseIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, uint(0), id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondInternalError(c, errors.New("disk I/O error"), "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"internal"}`, w.Body.String())
}

func TestRespondNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondNotFound(c, "book")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"book not found","code":"book_not_found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)

	respondNotFound(c, "session")

	assert.JSONEq(t, `{"error":"session not found","code":"session_not_found"}`, w.Body.String())
}

func TestRespondBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondBadRequest(c, "isbn is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"isbn is required","code":"invalid_request"}`, w.Body.String())
}
