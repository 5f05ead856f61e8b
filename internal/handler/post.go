package handler

import (
	"net/http"
	"path/filepath"

	"BlogCMS/internal/auth"
	"BlogCMS/internal/logger"
	"BlogCMS/internal/service"
)

// 8 MiB cover limit, matching the upload form.
const maxCoverBytes = 8 << 20

func PostCreateHandler(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if !decodeBody(w, r, &in) {
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	id, err := posts.Create(r.Context(), in, claims.UserID)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func PostUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.PostInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := posts.Update(r.Context(), id, in); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post updated")
}

func PostDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := posts.Delete(r.Context(), id); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted")
}

// PostCoverUploadHandler accepts a multipart form with a "cover" file and
// stores it under a name derived from the post id, replacing any previous
// cover for the same post.
func PostCoverUploadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing cover file")
		return
	}
	defer file.Close()

	url, err := posts.UploadCover(r.Context(), id, header.Filename, file, header.Size)
	if err != nil {
		if verrs, ok := service.AsValidation(err); ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
			return
		}
		writeError(w, r.URL.Path, err)
		return
	}

	logger.Info("cover_uploaded", map[string]any{
		"post_id": id,
		"ext":     filepath.Ext(header.Filename),
	})
	writeJSON(w, http.StatusOK, map[string]any{"cover": url})
}

func PostCoverRemoveHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := posts.RemoveCover(r.Context(), id); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cover removed")
}
