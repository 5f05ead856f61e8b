package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"BlogCMS/internal/datatable"
	"BlogCMS/internal/db"
	"BlogCMS/internal/i18n"
	"BlogCMS/internal/logger"

	"github.com/Masterminds/squirrel"
	"github.com/redis/go-redis/v9"
)

// PublicPostsHandler serves GET /api/{locale}/v1/posts?tags=a,b&page=n.
// Tag names must exist in one of the locales or the request is rejected;
// matching posts are paged 10 at a time and the rendered page is cached
// in Redis for a short window.
func PublicPostsHandler(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")
	if !i18n.IsSupported(locale) {
		writeMessage(w, http.StatusNotFound, "Unsupported locale")
		return
	}

	tagNames := splitTags(r.URL.Query().Get("tags"))
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string][]string{"page": {i18n.T(locale, "validation.page")}},
			})
			return
		}
		page = n
	}

	if len(tagNames) > 0 {
		missing, err := tags.MissingNames(r.Context(), tagNames)
		if err != nil {
			writeError(w, r.URL.Path, err)
			return
		}
		if len(missing) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string][]string{
					"tags": {fmt.Sprintf(i18n.T(locale, "validation.tag_invalid"), missing[0])},
				},
			})
			return
		}
	}

	cacheKey := postsCacheKey(locale, tagNames, page)
	if cached, err := db.RDB.Get(r.Context(), cacheKey).Bytes(); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	} else if err != redis.Nil {
		logger.Warn("cache_get_failed", map[string]any{"key": cacheKey, "error": err.Error()})
	}

	base := datatable.BaseQuery{
		Entity:       mustEntity("Post"),
		DefaultOrder: []string{"posts.id DESC"},
		With:         []string{"user", "tags"},
	}
	if len(tagNames) > 0 {
		ids, err := tags.IDsByNames(r.Context(), tagNames)
		if err != nil {
			writeError(w, r.URL.Path, err)
			return
		}
		base.Scope = squirrel.Expr(
			`EXISTS (SELECT 1 FROM post_tag WHERE post_tag.post_id = posts.id AND post_tag.tag_id = ANY(?))`,
			ids,
		)
	}

	result, err := engine.Make(r.Context(), base, datatable.Params{
		Page: page - 1,
		Rows: cfg.PublicAPI.PageSize,
	}, nil)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}

	payload := map[string]any{
		"data":  renderPosts(result.Data, locale),
		"links": result.Links,
		"meta":  result.Meta,
	}

	body, err := marshalAndCache(r.Context(), cacheKey, payload)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

func postsCacheKey(locale string, tagNames []string, page int) string {
	joined := "all"
	if len(tagNames) > 0 {
		joined = strings.Join(tagNames, "_")
	}
	return fmt.Sprintf("posts_%s_%s_page_%d", locale, joined, page)
}

// renderPosts flattens the localized JSONB documents into single-locale
// values and trims the rows down to the public shape.
func renderPosts(rows []map[string]any, locale string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		item := map[string]any{
			"id":                row["id"],
			"title":             localizedValue(row["title"], locale),
			"short_description": localizedValue(row["short_description"], locale),
			"content":           localizedValue(row["content"], locale),
			"cover":             row["cover"],
			"created_at":        formatTimestamp(row["created_at"]),
			"updated_at":        formatTimestamp(row["updated_at"]),
		}
		if user, ok := row["user"].(map[string]any); ok {
			item["user"] = map[string]any{
				"id":        user["id"],
				"full_name": user["full_name"],
			}
		}
		if tagRows, ok := row["tags"].([]map[string]any); ok {
			rendered := make([]map[string]any, 0, len(tagRows))
			for _, t := range tagRows {
				rendered = append(rendered, map[string]any{
					"id":   t["id"],
					"name": localizedValue(t["name"], locale),
				})
			}
			item["tags"] = rendered
		}
		out = append(out, item)
	}
	return out
}

// localizedValue picks the requested locale out of a JSONB translation
// document, falling back to the default locale.
func localizedValue(v any, locale string) any {
	doc, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if val, ok := doc[locale]; ok && val != nil {
		return val
	}
	return doc[i18n.DefaultLocale]
}

func formatTimestamp(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return v
}

func marshalAndCache(ctx context.Context, key string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.PublicAPI.CacheTTLSec) * time.Second
	if err := db.RDB.Set(ctx, key, body, ttl).Err(); err != nil {
		logger.Warn("cache_set_failed", map[string]any{"key": key, "error": err.Error()})
	}
	return body, nil
}
