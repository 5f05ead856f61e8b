package itests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"
)

func authedRequest(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	token, err := dashboardToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req, err := http.NewRequest(method, testBaseURL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func Test_Post_CRUD_Lifecycle(t *testing.T) {
	requireBootstrap(t)

	payload := map[string]any{
		"title":             map[string]string{"en": "Lifecycle", "it": "Ciclo di vita"},
		"content":           map[string]string{"en": "Body", "it": "Testo"},
		"short_description": map[string]string{"en": "Short", "it": "Breve"},
		"tags":              []map[string]any{{"id": seededTagIDs["Travel"]}},
	}
	body, _ := json.Marshal(payload)

	resp := authedRequest(t, http.MethodPost, "/dashboard/posts", bytes.NewReader(body), "application/json")
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d body=%s", resp.StatusCode, raw)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == 0 {
		t.Fatalf("create response: %s", raw)
	}

	payload["title"] = map[string]string{"en": "Lifecycle v2", "it": "Ciclo v2"}
	body, _ = json.Marshal(payload)
	resp = authedRequest(t, http.MethodPut, fmt.Sprintf("/dashboard/posts/%d", created.ID), bytes.NewReader(body), "application/json")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d", resp.StatusCode)
	}

	// cover upload
	var mp bytes.Buffer
	w := multipart.NewWriter(&mp)
	part, _ := w.CreateFormFile("cover", "photo.jpg")
	part.Write([]byte("fake-jpeg-bytes"))
	w.Close()

	resp = authedRequest(t, http.MethodPost, fmt.Sprintf("/dashboard/posts/%d/cover", created.ID), &mp, w.FormDataContentType())
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cover upload: %d body=%s", resp.StatusCode, raw)
	}
	var cover struct {
		Cover string `json:"cover"`
	}
	if err := json.Unmarshal(raw, &cover); err != nil || cover.Cover == "" {
		t.Fatalf("cover response: %s", raw)
	}

	resp = authedRequest(t, http.MethodDelete, fmt.Sprintf("/dashboard/posts/%d/cover", created.ID), nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cover remove: %d", resp.StatusCode)
	}

	resp = authedRequest(t, http.MethodDelete, fmt.Sprintf("/dashboard/posts/%d", created.ID), nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: %d", resp.StatusCode)
	}

	// gone now
	resp = authedRequest(t, http.MethodDelete, fmt.Sprintf("/dashboard/posts/%d", created.ID), nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", resp.StatusCode)
	}
}

func Test_Post_Create_ValidationErrors(t *testing.T) {
	requireBootstrap(t)

	body := []byte(`{"title": {"en": "Only English"}, "content": {}, "short_description": {}, "tags": []}`)
	resp := authedRequest(t, http.MethodPost, "/dashboard/posts", bytes.NewReader(body), "application/json")
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", resp.StatusCode, raw)
	}
	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("invalid JSON: %v body=%s", err, raw)
	}
	for _, field := range []string{"title.it", "content.en", "tags"} {
		if len(payload.Errors[field]) == 0 {
			t.Errorf("missing %s error in %s", field, raw)
		}
	}
}

func Test_Post_Cover_RejectsUnknownExtension(t *testing.T) {
	requireBootstrap(t)

	var mp bytes.Buffer
	w := multipart.NewWriter(&mp)
	part, _ := w.CreateFormFile("cover", "script.exe")
	part.Write([]byte("mz"))
	w.Close()

	resp := authedRequest(t, http.MethodPost, "/dashboard/posts/1/cover", &mp, w.FormDataContentType())
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for .exe cover, got %d", resp.StatusCode)
	}
}

func Test_Login_IssuesToken(t *testing.T) {
	requireBootstrap(t)

	body := []byte(`{"email": "author@example.com", "password": "itest-password"}`)
	resp, err := http.Post(testBaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d body=%s", resp.StatusCode, raw)
	}
	var payload struct {
		Token string `json:"token"`
		User  struct {
			FullName string `json:"full_name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Token == "" {
		t.Fatalf("login response: %s", raw)
	}
	if payload.User.FullName != "Author One" {
		t.Fatalf("user payload: %s", raw)
	}

	// wrong password is a 401
	body = []byte(`{"email": "author@example.com", "password": "nope"}`)
	resp, err = http.Post(testBaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status: %d", resp.StatusCode)
	}
}

func Test_Register_CreatesAccountAndSignsIn(t *testing.T) {
	requireBootstrap(t)

	body := []byte(`{"full_name": "New Writer", "email": "writer@example.com", "password": "writer-password"}`)
	resp, err := http.Post(testBaseURL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d body=%s", resp.StatusCode, raw)
	}
	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			FullName string `json:"full_name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Token == "" {
		t.Fatalf("register response: %s", raw)
	}
	if payload.User.FullName != "New Writer" || payload.User.ID == 0 {
		t.Fatalf("user payload: %s", raw)
	}

	// the fresh credentials work against /login
	body = []byte(`{"email": "writer@example.com", "password": "writer-password"}`)
	resp, err = http.Post(testBaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login with registered credentials: %d", resp.StatusCode)
	}

	// the seeded author's email is taken
	body = []byte(`{"full_name": "Imposter", "email": "author@example.com", "password": "long-enough"}`)
	resp, err = http.Post(testBaseURL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate email status: %d body=%s", resp.StatusCode, raw)
	}
	var errPayload struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &errPayload); err != nil || len(errPayload.Errors["email"]) == 0 {
		t.Fatalf("duplicate email errors: %s", raw)
	}

	// short password and missing name are flagged
	body = []byte(`{"full_name": "", "email": "weak@example.com", "password": "weak"}`)
	resp, err = http.Post(testBaseURL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid input status: %d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &errPayload); err != nil ||
		len(errPayload.Errors["full_name"]) == 0 || len(errPayload.Errors["password"]) == 0 {
		t.Fatalf("invalid input errors: %s", raw)
	}
}
