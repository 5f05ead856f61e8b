package handler

import (
	"net/http"

	"BlogCMS/internal/service"
)

func TagCreateHandler(w http.ResponseWriter, r *http.Request) {
	var in service.TagInput
	if !decodeBody(w, r, &in) {
		return
	}
	id, err := tags.Create(r.Context(), in)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func TagUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.TagInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := tags.Update(r.Context(), id, in); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag updated")
}

func TagDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := tags.Delete(r.Context(), id); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag deleted")
}
