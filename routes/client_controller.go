package routes

import (
	"database/sql"
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

func CreateClient(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := model.Client{}
		err := render.DecodeJSON(r.Body, &client)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if client.Name == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.client.name")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		clientId := uuid.NewString()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO client (
				id, name, industry, sub_industry, employee_count, locations, risk_level,
				contact_name, contact_email, contact_phone, contact_title,
				street, city, state, zip, country, notes, logo_url
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			clientId, client.Name, client.Industry, client.SubIndustry,
			client.EmployeeCount, client.Locations, client.RiskLevel,
			client.PrimaryContact.Name, client.PrimaryContact.Email,
			client.PrimaryContact.Phone, client.PrimaryContact.Title,
			client.Address.Street, client.Address.City, client.Address.State,
			client.Address.Zip, client.Address.Country,
			client.Notes, client.LogoURL,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_client", err)
			return
		}

		for _, templateId := range client.AssignedTemplateIDs {
			_, err = tx.ExecContext(r.Context(), `
				INSERT INTO client_template (client_id, template_id) VALUES (?, ?)`,
				clientId, templateId,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_client.templates", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_client.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": clientId,
		})
	}
}

func ListClients(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT
				c.id, c.name, c.industry, c.sub_industry, c.employee_count,
				c.locations, c.risk_level, c.total_audits_completed, c.last_audit_date
			FROM client c
			ORDER BY c.name`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_clients", err)
			return
		}
		defer rows.Close()

		clients := []model.Client{}
		for rows.Next() {
			c := model.Client{}
			err = rows.Scan(
				&c.ID, &c.Name, &c.Industry, &c.SubIndustry, &c.EmployeeCount,
				&c.Locations, &c.RiskLevel, &c.TotalAuditsCompleted, &c.LastAuditDate,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_clients.scan", err)
				return
			}

			clients = append(clients, c)
		}

		render.JSON(w, r, map[string]any{
			"clients": clients,
		})
	}
}

func GetClientById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientId := chi.URLParam(r, "id")

		c := model.Client{}
		err := app.QueryRowContext(r.Context(), `
			SELECT
				c.id, c.name, c.industry, c.sub_industry, c.employee_count,
				c.locations, c.risk_level,
				c.contact_name, c.contact_email, c.contact_phone, c.contact_title,
				c.street, c.city, c.state, c.zip, c.country,
				c.notes, c.logo_url, c.total_audits_completed, c.last_audit_date,
				c.created_at, c.updated_at
			FROM client c
			WHERE c.id = ?`,
			clientId,
		).Scan(
			&c.ID, &c.Name, &c.Industry, &c.SubIndustry, &c.EmployeeCount,
			&c.Locations, &c.RiskLevel,
			&c.PrimaryContact.Name, &c.PrimaryContact.Email,
			&c.PrimaryContact.Phone, &c.PrimaryContact.Title,
			&c.Address.Street, &c.Address.City, &c.Address.State,
			&c.Address.Zip, &c.Address.Country,
			&c.Notes, &c.LogoURL, &c.TotalAuditsCompleted, &c.LastAuditDate,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_client", clientId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_client", err)
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT template_id FROM client_template WHERE client_id = ?`,
			clientId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_client.templates", err)
			return
		}
		defer rows.Close()

		c.AssignedTemplateIDs = []string{}
		for rows.Next() {
			var templateId string
			err = rows.Scan(&templateId)
			if err != nil {
				httpx.LogInternalError(w, "db.get_client.templates.scan", err)
				return
			}
			c.AssignedTemplateIDs = append(c.AssignedTemplateIDs, templateId)
		}

		render.JSON(w, r, c)
	}
}

func UpdateClient(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientId := chi.URLParam(r, "id")

		client := model.Client{}
		err := render.DecodeJSON(r.Body, &client)
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

		res, err := tx.ExecContext(r.Context(), `
			UPDATE client
			SET
				name = ?, industry = ?, sub_industry = ?, employee_count = ?,
				locations = ?, risk_level = ?,
				contact_name = ?, contact_email = ?, contact_phone = ?, contact_title = ?,
				street = ?, city = ?, state = ?, zip = ?, country = ?,
				notes = ?, logo_url = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			client.Name, client.Industry, client.SubIndustry, client.EmployeeCount,
			client.Locations, client.RiskLevel,
			client.PrimaryContact.Name, client.PrimaryContact.Email,
			client.PrimaryContact.Phone, client.PrimaryContact.Title,
			client.Address.Street, client.Address.City, client.Address.State,
			client.Address.Zip, client.Address.Country,
			client.Notes, client.LogoURL,
			clientId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_client", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_client.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_client", clientId)
			return
		}

		// replace template assignments
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM client_template WHERE client_id = ?`,
			clientId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_client.templates.delete", err)
			return
		}
		for _, templateId := range client.AssignedTemplateIDs {
			_, err = tx.ExecContext(r.Context(), `
				INSERT INTO client_template (client_id, template_id) VALUES (?, ?)`,
				clientId, templateId,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.update_client.templates.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_client.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteClient(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientId := chi.URLParam(r, "id")

		res, err := app.ExecContext(r.Context(), `
			DELETE FROM client WHERE id = ?`,
			clientId,
		)
		if err != nil {
			// audits reference clients, deletion is blocked while any exist
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.delete_client.referenced")
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_client.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_client", clientId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
