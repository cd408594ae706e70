package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/export"
	"github.com/audithq/safety-audit/httpx"
	"github.com/audithq/safety-audit/log"
)

// loadExportRequest assembles the document pipeline's input contract from a
// stored audit: client name, auditor identity, section/field snapshots and
// the raw responses. Photo normalization happens inside the pipeline.
func loadExportRequest(r *http.Request, app app.App, auditId string) (export.Request, time.Time, error) {
	audit, err := loadAudit(r, app.DB, auditId)
	if err != nil {
		return export.Request{}, time.Time{}, err
	}

	var clientName string
	err = app.QueryRowContext(r.Context(), `
		SELECT c.name FROM client c WHERE c.id = ?`,
		audit.ClientID,
	).Scan(&clientName)
	if err != nil {
		return export.Request{}, time.Time{}, err
	}

	completedAt := time.Now()
	if audit.CompletedAt != nil {
		completedAt = *audit.CompletedAt
	}

	req := export.Request{
		TemplateName: audit.TemplateName,
		ClientName:   clientName,
		AuditorName:  audit.AuditorName,
		AuditorTitle: audit.AuditorTitle,
		AuditorEmail: audit.AuditorEmail,
		CompletedAt:  completedAt.UTC().Format(time.RFC3339),
		Sections:     audit.Sections,
		Fields:       audit.Fields,
		Responses:    audit.Responses,
	}
	return req, completedAt, nil
}

func exportError(w http.ResponseWriter, r *http.Request, code string, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		httpx.LogJSONError(w, r, http.StatusNotFound, code, err, "Audit not found")
	case errors.Is(err, export.ErrInvalid):
		httpx.LogJSONError(w, r, http.StatusBadRequest, code, err, "Invalid document request")
	default:
		httpx.LogJSONError(w, r, http.StatusInternalServerError, code, err, "Failed to generate document")
	}
}

// sendAttachment stages the download in a response buffer so a late failure
// cannot leave a half-written 200 on the wire.
func sendAttachment(w http.ResponseWriter, buf []byte, mime, filename string) {
	resp := httpx.NewResponseBuffer()
	resp.Header().Set("Content-Type", mime)
	resp.Header().Set("Content-Disposition", `attachment; filename="`+url.PathEscape(filename)+`"`)
	resp.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	resp.Header().Set("Cache-Control", "private, no-transform")
	resp.Write(buf)

	if err := resp.Flush(w); err != nil {
		log.Errorf("export.send: %s", err)
	}
}

func DownloadWord(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		req, completedAt, err := loadExportRequest(r, app, auditId)
		if err != nil {
			exportError(w, r, "export.word.load", err)
			return
		}

		buf, err := export.Word(req)
		if err != nil {
			exportError(w, r, "export.word.generate", err)
			return
		}

		sendAttachment(w, buf, export.MIMEWord, export.Filename(req.TemplateName, completedAt, "docx"))
	}
}

func DownloadPDF(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		req, completedAt, err := loadExportRequest(r, app, auditId)
		if err != nil {
			exportError(w, r, "export.pdf.load", err)
			return
		}

		buf, err := export.PDF(req)
		if err != nil {
			exportError(w, r, "export.pdf.generate", err)
			return
		}

		sendAttachment(w, buf, export.MIMEPDF, export.Filename(req.TemplateName, completedAt, "pdf"))
	}
}

func DownloadCSV(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditId := chi.URLParam(r, "id")

		req, completedAt, err := loadExportRequest(r, app, auditId)
		if err != nil {
			exportError(w, r, "export.csv.load", err)
			return
		}

		buf, err := export.CSV(req)
		if err != nil {
			exportError(w, r, "export.csv.generate", err)
			return
		}

		sendAttachment(w, buf, export.MIMECSV, export.Filename(req.TemplateName, completedAt, "csv"))
	}
}

// GenerateWord accepts the full document input contract inline and returns
// the Word rendition without touching storage.
func GenerateWord(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := export.Request{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogJSONError(w, r, http.StatusBadRequest, "export.word.parse_body", err, "Invalid document request")
			return
		}

		buf, err := export.Word(req)
		if err != nil {
			exportError(w, r, "export.word.generate", err)
			return
		}

		sendAttachment(w, buf, export.MIMEWord, export.Filename(req.TemplateName, time.Now(), "docx"))
	}
}
