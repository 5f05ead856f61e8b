package itests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

type pageResponse struct {
	Data []map[string]any `json:"data"`
	Meta struct {
		CurrentPage int   `json:"current_page"`
		From        int   `json:"from"`
		LastPage    int   `json:"last_page"`
		PerPage     int   `json:"per_page"`
		To          int   `json:"to"`
		Total       int64 `json:"total"`
	} `json:"meta"`
}

func postsIndex(t *testing.T, dtParams map[string]any, searchable []string) pageResponse {
	t.Helper()

	token, err := dashboardToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	payload := map[string]any{
		"dt_params":          dtParams,
		"searchable_columns": searchable,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, testBaseURL+"/dashboard/posts/index", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST /dashboard/posts/index: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d. body=%s", resp.StatusCode, raw)
	}

	var page pageResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		t.Fatalf("invalid JSON response: %v; body=%s", err, raw)
	}
	return page
}

func Test_Index_Pagination_FifteenPosts(t *testing.T) {
	requireBootstrap(t)

	first := postsIndex(t, map[string]any{"page": 0, "rows": 10}, nil)
	if len(first.Data) != 10 {
		t.Fatalf("first page size: %d", len(first.Data))
	}
	if first.Meta.Total != 15 || first.Meta.LastPage != 2 || first.Meta.CurrentPage != 1 {
		t.Fatalf("first page meta: %+v", first.Meta)
	}

	second := postsIndex(t, map[string]any{"page": 1, "rows": 10}, nil)
	if len(second.Data) != 5 {
		t.Fatalf("second page size: %d", len(second.Data))
	}
	if second.Meta.From != 11 || second.Meta.To != 15 {
		t.Fatalf("second page meta: %+v", second.Meta)
	}
}

func Test_Index_GlobalFilter_CaseInsensitive(t *testing.T) {
	requireBootstrap(t)

	page := postsIndex(t, map[string]any{
		"filters": map[string]any{
			"global": map[string]any{"value": "ai", "matchMode": "contains"},
		},
	}, []string{"title.en", "user.full_name", "tags.name.en"})

	if len(page.Data) == 0 {
		t.Fatalf("global 'ai' matched nothing")
	}
	found := false
	for _, row := range page.Data {
		title, _ := row["title"].(map[string]any)
		if title["en"] == "Artificial Intelligence in Practice" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the Artificial Intelligence post in the page: %v", page.Data)
	}
}

func Test_Index_EqualsOnLocalizedTitle(t *testing.T) {
	requireBootstrap(t)

	page := postsIndex(t, map[string]any{
		"filters": map[string]any{
			"title.en": map[string]any{"value": "Updated Title", "matchMode": "equals"},
		},
	}, nil)

	if page.Meta.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("equals should match exactly one post, meta=%+v", page.Meta)
	}
	title, _ := page.Data[0]["title"].(map[string]any)
	if title["en"] != "Updated Title" {
		t.Fatalf("wrong post matched: %v", page.Data[0])
	}
}

func Test_Index_RelationPathFilter(t *testing.T) {
	requireBootstrap(t)

	page := postsIndex(t, map[string]any{
		"filters": map[string]any{
			"tags.name.en": map[string]any{"value": "AI", "matchMode": "equals"},
		},
	}, nil)

	if page.Meta.Total != 1 {
		t.Fatalf("tag filter should match one post, meta=%+v", page.Meta)
	}
}

func Test_Index_EagerLoadsUserAndTags(t *testing.T) {
	requireBootstrap(t)

	page := postsIndex(t, map[string]any{"rows": 5}, nil)
	if len(page.Data) == 0 {
		t.Fatalf("no rows")
	}
	row := page.Data[0]

	user, ok := row["user"].(map[string]any)
	if !ok {
		t.Fatalf("user relation not loaded: %v", row)
	}
	if user["full_name"] != "Author One" {
		t.Fatalf("user payload: %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Fatalf("password leaked into eager-loaded user: %v", user)
	}

	if _, ok := row["tags"].([]any); !ok {
		t.Fatalf("tags relation not loaded: %T", row["tags"])
	}
}

func Test_Index_SortByRelationColumn(t *testing.T) {
	requireBootstrap(t)

	page := postsIndex(t, map[string]any{
		"sortField": "user.full_name",
		"sortOrder": 1,
		"rows":      3,
	}, nil)
	if len(page.Data) != 3 {
		t.Fatalf("page size: %d", len(page.Data))
	}
}

func Test_Index_RequiresAuth(t *testing.T) {
	requireBootstrap(t)

	body := bytes.NewReader([]byte(`{"dt_params": {}}`))
	resp, err := http.Post(testBaseURL+"/dashboard/posts/index", "application/json", body)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}
