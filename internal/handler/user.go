package handler

import (
	"net/http"

	"BlogCMS/internal/service"
)

func UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !decodeBody(w, r, &in) {
		return
	}
	id, err := users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func UserUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.UserInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := users.Update(r.Context(), id, in); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated")
}

func UserDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := users.Delete(r.Context(), id); err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted")
}
