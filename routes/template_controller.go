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

func CreateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		template := model.Template{}
		err := render.DecodeJSON(r.Body, &template)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if template.Name == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.template.name")
			return
		}
		for _, s := range template.Sections {
			for _, f := range s.Fields {
				if !f.Type.Valid() {
					httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel,
						"request.template.field_type", "unknown field type %q", f.Type)
					return
				}
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		templateId := uuid.NewString()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO template (id, name, description) VALUES (?, ?, ?)`,
			templateId, template.Name, template.Description,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template", err)
			return
		}

		err = insertSections(r, tx, templateId, template.Sections)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template.sections", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": templateId,
		})
	}
}

func insertSections(r *http.Request, tx *sql.Tx, templateId string, sections []model.Section) error {
	sectionStmt, err := tx.PrepareContext(r.Context(), `
		INSERT INTO section (id, template_id, title, description, weight, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer sectionStmt.Close()

	fieldStmt, err := tx.PrepareContext(r.Context(), `
		INSERT INTO field (id, section_id, type, question, required, ai_enabled, options, settings, scoring, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fieldStmt.Close()

	for si, s := range sections {
		sectionId := s.ID
		if sectionId == "" {
			sectionId = uuid.NewString()
		}
		weight := s.Weight
		if weight == 0 {
			weight = 1
		}
		_, err = sectionStmt.ExecContext(r.Context(), sectionId, templateId, s.Title, s.Description, weight, si)
		if err != nil {
			return err
		}

		for fi, f := range s.Fields {
			fieldId := f.ID
			if fieldId == "" {
				fieldId = uuid.NewString()
			}
			options, settings, scoring, err := marshalFieldConfig(f)
			if err != nil {
				return err
			}
			_, err = fieldStmt.ExecContext(r.Context(),
				fieldId, sectionId, string(f.Type), f.Question, f.Required, f.AIEnabled,
				options, settings, scoring, fi,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func marshalFieldConfig(f model.Field) (options, settings, scoring string, err error) {
	if f.Options != nil {
		raw, err := json.Marshal(f.Options)
		if err != nil {
			return "", "", "", err
		}
		options = string(raw)
	}
	if f.Settings != nil {
		raw, err := json.Marshal(f.Settings)
		if err != nil {
			return "", "", "", err
		}
		settings = string(raw)
	}
	if f.Scoring != nil {
		raw, err := json.Marshal(f.Scoring)
		if err != nil {
			return "", "", "", err
		}
		scoring = string(raw)
	}
	return options, settings, scoring, nil
}

func ListTemplates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT t.id, t.version, t.name, t.description
			FROM template t
			ORDER BY t.name`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_templates", err)
			return
		}
		defer rows.Close()

		templates := []model.Template{}
		for rows.Next() {
			t := model.Template{}
			err = rows.Scan(&t.ID, &t.Version, &t.Name, &t.Description)
			if err != nil {
				httpx.LogInternalError(w, "db.get_templates.scan", err)
				return
			}

			templates = append(templates, t)
		}

		render.JSON(w, r, map[string]any{
			"templates": templates,
		})
	}
}

func loadTemplate(r *http.Request, db *sql.DB, templateId string) (model.Template, error) {
	t := model.Template{}
	err := db.QueryRowContext(r.Context(), `
		SELECT t.id, t.version, t.name, t.description
		FROM template t
		WHERE t.id = ?`,
		templateId,
	).Scan(&t.ID, &t.Version, &t.Name, &t.Description)
	if err != nil {
		return t, err
	}

	rows, err := db.QueryContext(r.Context(), `
		SELECT
			s.id, s.title, s.description, s.weight,
			f.id, f.type, f.question, f.required, f.ai_enabled, f.options, f.settings, f.scoring
		FROM section s
		LEFT OUTER JOIN field f ON (s.id = f.section_id)
		WHERE s.template_id = ?
		ORDER BY s.position, f.position`,
		templateId,
	)
	if err != nil {
		return t, err
	}
	defer rows.Close()

	t.Sections = []model.Section{}
	for rows.Next() {
		s := model.Section{}
		var fieldId, fieldType, question, options, settings, scoring sql.NullString
		var required, aiEnabled sql.NullBool
		err = rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.Weight,
			&fieldId, &fieldType, &question, &required, &aiEnabled, &options, &settings, &scoring,
		)
		if err != nil {
			return t, err
		}

		lastIdx := len(t.Sections) - 1
		if lastIdx < 0 || t.Sections[lastIdx].ID != s.ID {
			s.Fields = []model.Field{}
			t.Sections = append(t.Sections, s)
			lastIdx++
		}

		if !fieldId.Valid {
			continue
		}
		f := model.Field{
			ID:        fieldId.String,
			SectionID: s.ID,
			Type:      model.FieldType(fieldType.String),
			Question:  question.String,
			Required:  required.Bool,
			AIEnabled: aiEnabled.Bool,
		}
		if options.String != "" {
			err = json.Unmarshal([]byte(options.String), &f.Options)
			if err != nil {
				return t, err
			}
		}
		if settings.String != "" {
			f.Settings = &model.FieldSettings{}
			err = json.Unmarshal([]byte(settings.String), f.Settings)
			if err != nil {
				return t, err
			}
		}
		if scoring.String != "" {
			f.Scoring = &model.FieldScoring{}
			err = json.Unmarshal([]byte(scoring.String), f.Scoring)
			if err != nil {
				return t, err
			}
		}
		t.Sections[lastIdx].Fields = append(t.Sections[lastIdx].Fields, f)
	}
	return t, rows.Err()
}

func GetTemplateById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		template, err := loadTemplate(r, app.DB, templateId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_template", templateId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_template", err)
			return
		}

		render.JSON(w, r, template)
	}
}

func UpdateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		template := model.Template{}
		err := render.DecodeJSON(r.Body, &template)
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

		// full-section replace: drop and recreate, fields cascade
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM section WHERE template_id = ?`,
			templateId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.delete_sections", err)
			return
		}

		err = insertSections(r, tx, templateId, template.Sections)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.sections", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			UPDATE template
			SET
				name = ?,
				description = ?,
				version = version+1,
				updated_at = CURRENT_TIMESTAMP
			WHERE	id = ?
				AND version = ?`,
			template.Name,
			template.Description,
			templateId,
			template.Version,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template", err)
			return
		}
		// optimistic lock
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.verify", err)
			return
		}
		if n < 1 {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_template.verify.conflict")
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		var inUse bool
		err := app.QueryRowContext(r.Context(), `
			SELECT 1 FROM audit WHERE template_id = ? LIMIT 1`,
			templateId,
		).Scan(&inUse)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			httpx.LogInternalError(w, "db.delete_template.check", err)
			return
		}
		if inUse {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.delete_template.referenced")
			return
		}

		res, err := app.ExecContext(r.Context(), `
			DELETE FROM template WHERE id = ?`,
			templateId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_template", templateId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DuplicateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "id")

		template, err := loadTemplate(r, app.DB, templateId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "duplicate_template", templateId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.duplicate_template.load", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		copyId := uuid.NewString()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO template (id, name, description) VALUES (?, ?, ?)`,
			copyId, template.Name+" (Copy)", template.Description,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.duplicate_template", err)
			return
		}

		// sections and fields get fresh ids in the copy
		for si := range template.Sections {
			template.Sections[si].ID = ""
			for fi := range template.Sections[si].Fields {
				template.Sections[si].Fields[fi].ID = ""
			}
		}
		err = insertSections(r, tx, copyId, template.Sections)
		if err != nil {
			httpx.LogInternalError(w, "db.duplicate_template.sections", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.duplicate_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": copyId,
		})
	}
}
