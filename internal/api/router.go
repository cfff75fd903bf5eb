package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/bundleservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// dataDir is used to resolve the assets directory.
func NewRouter(svc *bundleservice.Service, authEnabled bool, token string, sseHandler http.Handler, dataDir string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(dataDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Datasets.
	r.Get("/datasets", h.ListDatasets)

	// Bundles CRUD, dataset scoped.
	r.Route("/datasets/{ds}", func(r chi.Router) {
		r.Get("/bundles", h.ListBundles)
		r.Post("/bundles", h.CreateBundle)
		r.Get("/bundles/{id}", h.GetBundle)
		r.Put("/bundles/{id}", h.UpdateBundle)
		r.Delete("/bundles/{id}", h.DeleteBundle)
		r.Put("/bundles/{id}/memos", h.UpdateMemos)

		r.Get("/keywords", h.Keywords)

		r.Get("/links", h.ListLinks)
		r.Post("/links", h.CreateLink)
		r.Delete("/links/{id}", h.DeleteLink)

		r.Get("/export/bundles.csv", h.ExportBundles)
		r.Get("/export/memos.csv", h.ExportMemos)
	})

	// Keyword tree and tagged procedures.
	r.Get("/tree", h.Tree)
	r.Get("/procedures", h.ProceduresByKeyword)
	r.Get("/procedures/search", h.SearchProcedures)
	r.Post("/procedures", h.CreateProcedure)

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
