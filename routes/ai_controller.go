package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/httpx"
	"github.com/audithq/safety-audit/log"
)

type recommendationRequest struct {
	AuditID   string `json:"auditId,omitempty"`
	FieldID   string `json:"fieldId,omitempty"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

// Recommendation asks the language model for a remediation suggestion. When
// the request names a stored audit field, the answer is persisted alongside
// that field's response so exports can include it.
func Recommendation(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.AI == nil {
			httpx.LogStatusMsg(w, http.StatusServiceUnavailable, log.DebugLevel,
				"ai.recommendation.unavailable", "AI recommendations are not configured")
			return
		}

		body := recommendationRequest{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogJSONError(w, r, http.StatusBadRequest, "ai.recommendation.parse_body", err, "Invalid request body")
			return
		}
		if body.Prompt == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "ai.recommendation.no_prompt", "Prompt is required")
			return
		}

		recommendation, err := app.AI.Recommend(r.Context(), body.Prompt, body.Model, body.MaxTokens)
		if err != nil {
			httpx.LogJSONError(w, r, http.StatusInternalServerError, "ai.recommendation.generate", err, "Failed to generate recommendation")
			return
		}

		if body.AuditID != "" && body.FieldID != "" {
			_, err = app.ExecContext(r.Context(), `
				UPDATE audit_response SET ai_recommendation = ?
				WHERE audit_id = ? AND field_id = ?`,
				recommendation, body.AuditID, body.FieldID,
			)
			if err != nil {
				log.Errorf("ai.recommendation.persist: %s", err)
			}
		}

		render.JSON(w, r, map[string]string{"recommendation": recommendation})
	}
}
