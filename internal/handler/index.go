package handler

import (
	"encoding/json"
	"net/http"

	"BlogCMS/internal/datatable"
	"BlogCMS/internal/entity"
	"BlogCMS/internal/logger"
)

// indexRequest is the list-view descriptor the dashboard posts: the raw
// datatable params plus the columns the global filter may search over.
type indexRequest struct {
	Params     json.RawMessage `json:"dt_params"`
	Searchable []string        `json:"searchable_columns"`
}

func runIndex(w http.ResponseWriter, r *http.Request, base datatable.BaseQuery) {
	var req indexRequest
	if !decodeBody(w, r, &req) {
		return
	}

	logger.Info("request", map[string]any{
		"endpoint": r.URL.Path,
		"payload":  req.Params,
	})

	params := datatable.ParseParams(req.Params)
	page, err := engine.Make(r.Context(), base, params, req.Searchable)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func mustEntity(name string) *entity.Entity {
	e, ok := entity.Get(name)
	if !ok {
		panic("entity not registered: " + name)
	}
	return e
}

func PostIndexHandler(w http.ResponseWriter, r *http.Request) {
	runIndex(w, r, datatable.BaseQuery{
		Entity:       mustEntity("Post"),
		DefaultOrder: []string{"posts.id DESC"},
		With:         []string{"user", "tags"},
	})
}

func TagIndexHandler(w http.ResponseWriter, r *http.Request) {
	runIndex(w, r, datatable.BaseQuery{
		Entity:       mustEntity("Tag"),
		DefaultOrder: []string{"tags.id DESC"},
	})
}

func UserIndexHandler(w http.ResponseWriter, r *http.Request) {
	runIndex(w, r, datatable.BaseQuery{
		Entity:       mustEntity("User"),
		DefaultOrder: []string{"users.id DESC"},
	})
}
