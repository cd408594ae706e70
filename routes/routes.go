package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer, middleware.RequestSize(app.MaxBodySize))

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	admin := middlewares.Admin(app.TokenSecret)

	api.Route("/clients", func(r chi.Router) {
		r.Use(admin)

		r.Post("/", CreateClient(app))
		r.Get("/", ListClients(app))
		r.Get("/{id}", GetClientById(app))
		r.Put("/{id}", UpdateClient(app))
		r.Delete("/{id}", DeleteClient(app))
	})

	api.Route("/templates", func(r chi.Router) {
		r.Use(admin)

		r.Post("/", CreateTemplate(app))
		r.Get("/", ListTemplates(app))
		r.Get("/{id}", GetTemplateById(app))
		r.Put("/{id}", UpdateTemplate(app))
		r.Delete("/{id}", DeleteTemplate(app))
		r.Post("/{id}/duplicate", DuplicateTemplate(app))
	})

	api.Route("/tags", func(r chi.Router) {
		r.Use(admin)

		r.Post("/", CreateTag(app))
		r.Get("/", ListTags(app))
	})

	api.Route("/audits", func(r chi.Router) {
		r.Use(admin)

		r.Post("/", CreateAudit(app))
		r.Get("/", ListAudits(app))
		r.Get("/{id}", GetAuditById(app))
		r.Put("/{id}", UpdateAudit(app))
		r.Post("/{id}/complete", CompleteAudit(app))
	})

	api.Route("/exports", func(r chi.Router) {
		r.Use(admin)

		r.Get("/word/{id}", DownloadWord(app))
		r.Get("/pdf/{id}", DownloadPDF(app))
		r.Get("/csv/{id}", DownloadCSV(app))
		r.Post("/word", GenerateWord(app))
	})

	api.Route("/ai", func(r chi.Router) {
		r.Use(admin)

		r.Post("/recommendations", Recommendation(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
