package router

import (
	"net/http"

	"BlogCMS/internal/config"
	"BlogCMS/internal/handler"
)

// InitRoutes registers every route on the default mux. Dashboard routes sit
// behind the JWT guard; the public API is open but rate-limited.
func InitRoutes(cfg *config.Config) {
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, h)
	}
	open := func(h http.HandlerFunc) http.HandlerFunc {
		return cors(withLogging(h))
	}
	guarded := func(h http.HandlerFunc) http.HandlerFunc {
		return cors(withLogging(withAuth(cfg, h)))
	}

	// Preflights never reach the method-scoped routes below, so CORS
	// answers them from a catch-all.
	http.HandleFunc("OPTIONS /", cors(func(w http.ResponseWriter, r *http.Request) {}))

	http.HandleFunc("POST /login", open(handler.LoginHandler))
	http.HandleFunc("POST /register", open(handler.RegisterHandler))
	http.HandleFunc("POST /logout", open(handler.LogoutHandler))

	http.HandleFunc("POST /dashboard/posts/index", guarded(handler.PostIndexHandler))
	http.HandleFunc("POST /dashboard/posts", guarded(handler.PostCreateHandler))
	http.HandleFunc("PUT /dashboard/posts/{id}", guarded(handler.PostUpdateHandler))
	http.HandleFunc("DELETE /dashboard/posts/{id}", guarded(handler.PostDeleteHandler))
	http.HandleFunc("POST /dashboard/posts/{id}/cover", guarded(handler.PostCoverUploadHandler))
	http.HandleFunc("DELETE /dashboard/posts/{id}/cover", guarded(handler.PostCoverRemoveHandler))

	http.HandleFunc("POST /dashboard/tags/index", guarded(handler.TagIndexHandler))
	http.HandleFunc("POST /dashboard/tags", guarded(handler.TagCreateHandler))
	http.HandleFunc("PUT /dashboard/tags/{id}", guarded(handler.TagUpdateHandler))
	http.HandleFunc("DELETE /dashboard/tags/{id}", guarded(handler.TagDeleteHandler))

	http.HandleFunc("POST /dashboard/users/index", guarded(handler.UserIndexHandler))
	http.HandleFunc("POST /dashboard/users", guarded(handler.UserCreateHandler))
	http.HandleFunc("PUT /dashboard/users/{id}", guarded(handler.UserUpdateHandler))
	http.HandleFunc("DELETE /dashboard/users/{id}", guarded(handler.UserDeleteHandler))

	limiter := newIPRateLimiter(cfg.PublicAPI.RatePerMinute)
	http.HandleFunc("GET /api/{locale}/v1/posts",
		open(limiter.wrap(handler.PublicPostsHandler)))

	// Uploaded covers are served as static files when they live on local disk.
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "disk" {
		http.Handle("GET /storage/",
			http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.Storage.PublicDir))))
	}
}
