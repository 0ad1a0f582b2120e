package http

import (
	"encoding/json"
	"net/http"

	"quiz-catalog-service/internal/app"
)

// ExportHandler serves the full catalog as JSON for read-only
// collaborators (document rendering, backups). No write access.
func ExportHandler(service *app.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(service.Catalog().Snapshot()); err != nil {
			http.Error(w, "encode catalog", http.StatusInternalServerError)
		}
	}
}
