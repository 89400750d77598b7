package apitest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/middleware"
)

// NewRouter mounts the remote API contract on a chi router:
//
//	POST   /login          → s.Login
//	GET    /animals        → s.ListAnimals
//	POST   /animals        → s.UpdateAnimal
//	DELETE /animals?fid=   → s.DeleteAnimal
func NewRouter(s *Server, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(s.countAndFail)

	r.Post("/login", s.Login)
	r.Get("/animals", s.ListAnimals)
	r.Post("/animals", s.UpdateAnimal)
	r.Delete("/animals", s.DeleteAnimal)

	return r
}
