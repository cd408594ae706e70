package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/httpx"
	"github.com/audithq/safety-audit/log"
	"github.com/audithq/safety-audit/model"
)

func CreateAudit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		audit := model.Audit{}
		err := render.DecodeJSON(r.Body, &audit)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if audit.ClientID == "" || audit.TemplateID == "" || audit.AuditorName == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.audit.required")
			return
		}

		template, err := loadTemplate(r, app.DB, audit.TemplateID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "create_audit.template", audit.TemplateID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.create_audit.template", err)
			return
		}

		// flatten the template into section/field snapshots, so the audit
		// keeps rendering even if the template is edited later
		sections := []model.SectionRef{}
		fields := []model.FieldRef{}
		for _, s := range template.Sections {
			sections = append(sections, model.SectionRef{ID: s.ID, Title: s.Title})
			for _, f := range s.Fields {
				ref := model.FieldRef{
					ID:        f.ID,
					SectionID: s.ID,
					Question:  f.Question,
					Type:      f.Type,
					Required:  f.Required,
					Scoring:   f.Scoring,
				}
				if f.Settings != nil {
					ref.HasPhoto = f.Settings.AllowPhotos
					ref.HasNotes = f.Settings.AllowNotes
				}
				fields = append(fields, ref)
			}
		}

		sectionsJson, err := json.Marshal(sections)
		if err != nil {
			httpx.LogInternalError(w, "db.create_audit.sections", err)
			return
		}
		fieldsJson, err := json.Marshal(fields)
		if err != nil {
			httpx.LogInternalError(w, "db.create_audit.fields", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		auditId := uuid.NewString()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO audit (
				id, client_id, template_id, template_name,
				auditor_name, auditor_title, auditor_email,
				status, sections, fields
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			auditId, audit.ClientID, audit.TemplateID, template.Name,
			audit.AuditorName, audit.AuditorTitle, audit.AuditorEmail,
			string(model.StatusDraft), string(sectionsJson), string(fieldsJson),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_audit", err)
			return
		}

		// one empty response per answerable field
		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO audit_response (audit_id, field_id) VALUES (?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_audit.responses.prepare", err)
			return
		}
		defer stmt.Close()

		for _, f := range fields {
			if !f.Type.ExpectsResponse() {
				continue
			}
			_, err = stmt.ExecContext(r.Context(), auditId, f.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_audit.responses", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_audit.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": auditId,
		})
	}
}

func ListAudits(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT
				a.id, a.client_id, a.template_id, a.template_name,
				a.auditor_name, a.status, a.completed_at, a.created_at, a.updated_at
			FROM audit a`
		args := []any{}
		if clientId := r.URL.Query().Get("clientId"); clientId != "" {
			query += ` WHERE a.client_id = ?`
			args = append(args, clientId)
		}
		query += ` ORDER BY a.created_at DESC`

		rows, err := app.QueryContext(r.Context(), query, args...)
		if err != nil {
			httpx.LogInternalError(w, "db.get_audits", err)
			return
		}
		defer rows.Close()

		audits := []model.Audit{}
		for rows.Next() {
			a := model.Audit{}
			err = rows.Scan(
				&a.ID, &a.ClientID, &a.TemplateID, &a.TemplateName,
				&a.AuditorName, &a.Status, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_audits.scan", err)
				return
			}

			audits = append(audits, a)
		}

		render.JSON(w, r, map[string]any{
			"audits": audits,
		})
	}
}

func loadAudit(r *http.Request, db *sql.DB, auditId string) (model.Audit, error) {
	a := model.Audit{}
	var sectionsJson, fieldsJson string
	err := db.QueryRowContext(r.Context(), `
		SELECT
			a.id, a.client_id, a.template_id, a.template_name,
			a.auditor_name, a.auditor_title, a.auditor_email,
			a.status, a.sections, a.fields,
			a.completed_at, a.created_at, a.updated_at
		FROM audit a
		WHERE a.id = ?`,
		auditId,
	).Scan(
		&a.ID, &a.ClientID, &a.TemplateID, &a.TemplateName,
		&a.AuditorName, &a.AuditorTitle, &a.AuditorEmail,
		&a.Status, &sectionsJson, &fieldsJson,
		&a.CompletedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	err = json.Unmarshal([]byte(sectionsJson), &a.Sections)
	if err != nil {
		return a, err
	}
	err = json.Unmarshal([]byte(fieldsJson), &a.Fields)
	if err != nil {
		return a, err
	}

	rows, err := db.QueryContext(r.Context(), `
		SELECT v.field_id, v.value, v.notes, v.photos, v.ai_recommendation
		FROM audit_response v
		WHERE v.audit_id = ?`,
		auditId,
	)
	if err != nil {
		return a, err
	}
	defer rows.Close()

	a.Responses = map[string]model.Response{}
	for rows.Next() {
		resp := model.Response{}
		var photosJson string
		err = rows.Scan(&resp.FieldID, &resp.Value, &resp.Notes, &photosJson, &resp.AIRecommendation)
		if err != nil {
			return a, err
		}
		if photosJson != "" {
			err = json.Unmarshal([]byte(photosJson), &resp.Photos)
			if err != nil {
				return a, err
			}
		}
		a.Responses[resp.FieldID] = resp
	}
	return a, rows.Err()
}

func GetAuditById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		audit, err := loadAudit(r, app.DB, auditId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_audit", auditId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_audit", err)
			return
		}

		if audit.Status == model.StatusCompleted {
			score := audit.OverallScore()
			audit.Score = &score
		}

		render.JSON(w, r, audit)
	}
}

// UpdateAudit saves a draft: response values, notes and photo payloads.
// Completed audits are immutable.
func UpdateAudit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		audit := model.Audit{}
		err := render.DecodeJSON(r.Body, &audit)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var status model.AuditStatus
		err = tx.QueryRowContext(r.Context(), `
			SELECT a.status FROM audit a WHERE a.id = ?`,
			auditId,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "update_audit", auditId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_audit.status", err)
			return
		}
		if status == model.StatusCompleted {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_audit.completed")
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			UPDATE audit_response
			SET value = ?, notes = ?, photos = ?
			WHERE audit_id = ? AND field_id = ?`)
		if err != nil {
			httpx.LogInternalError(w, "db.update_audit.responses.prepare", err)
			return
		}
		defer stmt.Close()

		for fieldId, resp := range audit.Responses {
			photos := resp.Photos
			if photos == nil {
				photos = []string{}
			}
			photosJson, err := json.Marshal(photos)
			if err != nil {
				httpx.LogInternalError(w, "db.update_audit.responses.photos", err)
				return
			}
			_, err = stmt.ExecContext(r.Context(), resp.Value, resp.Notes, string(photosJson), auditId, fieldId)
			if err != nil {
				httpx.LogInternalError(w, "db.update_audit.responses", err)
				return
			}
		}

		_, err = tx.ExecContext(r.Context(), `
			UPDATE audit SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			auditId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_audit", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_audit.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CompleteAudit transitions draft -> completed, a one-way move, and updates
// the client's audit aggregates.
func CompleteAudit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(r.Context(), `
			UPDATE audit
			SET
				status = ?,
				completed_at = CURRENT_TIMESTAMP,
				updated_at = CURRENT_TIMESTAMP
			WHERE	id = ?
				AND status = ?`,
			string(model.StatusCompleted),
			auditId,
			string(model.StatusDraft),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.complete_audit", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.complete_audit.verify", err)
			return
		}
		if n < 1 {
			// either missing or already completed
			var exists bool
			err = tx.QueryRowContext(r.Context(), `
				SELECT 1 FROM audit WHERE id = ?`,
				auditId,
			).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				httpx.LogNotFound(w, "complete_audit", auditId)
				return
			}
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.complete_audit.already_completed")
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			UPDATE client
			SET
				total_audits_completed = total_audits_completed + 1,
				last_audit_date = CURRENT_TIMESTAMP,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = (SELECT client_id FROM audit WHERE id = ?)`,
			auditId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.complete_audit.client", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.complete_audit.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
