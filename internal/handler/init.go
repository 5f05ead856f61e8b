package handler

import (
	"BlogCMS/internal/config"
	"BlogCMS/internal/datatable"
	"BlogCMS/internal/db"
	"BlogCMS/internal/service"
	"BlogCMS/internal/storage"
)

var (
	cfg    *config.Config
	engine *datatable.Engine
	posts  *service.PostService
	tags   *service.TagService
	users  *service.UserService
)

// Init wires the handlers to the shared pool and storage backend. Must be
// called after db.InitPostgres and before the routes are registered.
func Init(c *config.Config, store storage.Storage) {
	cfg = c
	engine = datatable.NewEngine(db.Pool)
	posts = service.NewPostService(db.Pool, store)
	tags = service.NewTagService(db.Pool)
	users = service.NewUserService(db.Pool)
}
