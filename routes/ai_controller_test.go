package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/audithq/safety-audit/app"
)

func TestRecommendationUnconfigured(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/ai/recommendations",
		strings.NewReader(`{"prompt": "suggest a fix"}`))
	w := httptest.NewRecorder()

	Recommendation(app.App{})(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
