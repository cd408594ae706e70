package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/export"
)

const generateBody = `{
	"templateName": "Monthly Fire Inspection",
	"clientName": "Acme Corp",
	"auditorName": "Jane Doe",
	"completedAt": "2026-03-15T10:00:00Z",
	"sections": [{"id": "s1", "title": "General"}],
	"fields": [{"id": "f1", "sectionId": "s1", "question": "Is the exit clear?", "type": "YES_NO"}],
	"responses": {"f1": {"value": "yes"}}
}`

func TestGenerateWord(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/exports/word", strings.NewReader(generateBody))
	w := httptest.NewRecorder()

	GenerateWord(app.App{})(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.MIMEWord, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "monthly-fire-inspection-")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK\x03\x04")))
	assert.NoError(t, export.VerifyWord(w.Body.Bytes()))
}

func TestGenerateWordInvalidRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/exports/word", strings.NewReader(`{"templateName": "x"}`))
	w := httptest.NewRecorder()

	GenerateWord(app.App{})(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope["error"])
}

func TestGenerateWordMalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/exports/word", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	GenerateWord(app.App{})(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
