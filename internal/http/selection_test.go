package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionController_ToggleAndClear(t *testing.T) {
	s := setupTestServer(t)
	session := s.openSession(t)
	base := "/api/sessions/" + session.ID + "/selection"

	w := s.do(t, "GET", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"selected":[],"active":false}`, w.Body.String())

	w = s.do(t, "POST", base+"/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"selected":[3],"active":true,"toggled":true}`, w.Body.String())

	s.do(t, "POST", base+"/1", nil)
	w = s.do(t, "GET", base, nil)
	assert.JSONEq(t, `{"selected":[1,3],"active":true}`, w.Body.String())

	w = s.do(t, "POST", base+"/3", nil)
	assert.JSONEq(t, `{"selected":[1],"active":true,"toggled":false}`, w.Body.String())

	w = s.do(t, "DELETE", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"selected":[],"active":false}`, w.Body.String())
}

func TestSelectionController_InvalidID(t *testing.T) {
	s := setupTestServer(t)
	session := s.openSession(t)

	w := s.do(t, "POST", "/api/sessions/"+session.ID+"/selection/x", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectionController_DeleteSelected(t *testing.T) {
	s := setupTestServer(t)
	seeded := s.seed(t, "111", "222", "333")
	session := s.openSession(t)
	base := "/api/sessions/" + session.ID + "/selection"

	s.do(t, "POST", base+"/1", nil)
	s.do(t, "POST", base+"/3", nil)
	// Not a record; ignored by the delete.
	s.do(t, "POST", base+"/42", nil)

	w := s.do(t, "POST", base+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())
	assert.Equal(t, 2, s.deletions.total())

	remaining, err := s.store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, seeded[1].ID, remaining[0].ID)

	w = s.do(t, "GET", base, nil)
	assert.JSONEq(t, `{"selected":[],"active":false}`, w.Body.String())
}

func TestSelectionController_DeleteWithEmptySelection(t *testing.T) {
	s := setupTestServer(t)
	s.seed(t, "111")
	session := s.openSession(t)

	w := s.do(t, "POST", "/api/sessions/"+session.ID+"/selection/delete", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":0}`, w.Body.String())
	assert.Zero(t, s.deletions.total())
}

func TestSelectionController_SessionsAreIndependent(t *testing.T) {
	s := setupTestServer(t)
	first := s.openSession(t)
	second := s.openSession(t)

	s.do(t, "POST", "/api/sessions/"+first.ID+"/selection/1", nil)

	w := s.do(t, "GET", "/api/sessions/"+second.ID+"/selection", nil)
	assert.JSONEq(t, `{"selected":[],"active":false}`, w.Body.String())
}
