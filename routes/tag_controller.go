package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/httpx"
	"github.com/audithq/safety-audit/log"
	"github.com/audithq/safety-audit/model"
)

func CreateTag(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := model.Tag{}
		err := render.DecodeJSON(r.Body, &tag)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		tag.Name = strings.TrimSpace(tag.Name)
		if tag.Name == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.tag.name")
			return
		}

		tagId := uuid.NewString()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO tag (id, name) VALUES (?, ?)`,
			tagId, tag.Name,
		)
		if err != nil {
			// unique name constraint
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.insert_tag.duplicate")
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": tagId,
		})
	}
}

func ListTags(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT t.id, t.name FROM tag t ORDER BY t.name`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_tags", err)
			return
		}
		defer rows.Close()

		tags := []model.Tag{}
		for rows.Next() {
			t := model.Tag{}
			err = rows.Scan(&t.ID, &t.Name)
			if err != nil {
				httpx.LogInternalError(w, "db.get_tags.scan", err)
				return
			}

			tags = append(tags, t)
		}

		render.JSON(w, r, map[string]any{
			"tags": tags,
		})
	}
}
