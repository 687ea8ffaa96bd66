package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"

	"inkwell/internal/api/handler"
	"inkwell/internal/api/middleware"
	"inkwell/internal/app/service"
	"inkwell/internal/common/security"
	"inkwell/internal/domain/repository"
)

func NewRouter(
	logger zerolog.Logger,
	tokens *security.TokenManager,
	userRepo repository.UserRepository,
	authService *service.AuthService,
	postService *service.PostService,
	commentService *service.CommentService,
) http.Handler {
	r := chi.NewRouter()

	// Base middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies "Authorization: Bearer <t>" when present and stores the
	// outcome in the context; the per-route resolvers decide whether a
	// missing or bad token is fatal.
	r.Use(jwtauth.Verifier(tokens.JWTAuth()))

	authMW := middleware.NewAuth(userRepo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, logger)
		authHandler.RegisterRoutes(api)

		postHandler := handler.NewPostHandler(postService, authMW, logger)
		commentHandler := handler.NewCommentHandler(commentService, authMW, logger)
		api.Route("/posts", func(posts chi.Router) {
			postHandler.RegisterRoutes(posts)
			commentHandler.RegisterPostRoutes(posts)
		})
		api.Route("/comments", commentHandler.RegisterRoutes)
	})

	return r
}
