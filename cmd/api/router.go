package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared/authz"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.Metrics(),
	)

	r := &routes{
		c:        c,
		auth:     middleware.Auth(c.JWTManager, c.KV),
		optional: middleware.OptionalAuth(c.JWTManager, c.KV),
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

		r.setupAuthRoutes(v1)
		r.setupBookRoutes(v1)
		r.setupAuthorRoutes(v1)
		r.setupReviewRoutes(v1)
		r.setupReadingHistoryRoutes(v1)
		r.setupUserRoutes(v1)
	}

	return router
}

type routes struct {
	c        *container.Container
	auth     gin.HandlerFunc
	optional gin.HandlerFunc
}

func (r *routes) can(action authz.Action, resource authz.Resource) gin.HandlerFunc {
	return middleware.Authorize(r.c.Gate, action, resource)
}

// ========================================
// AUTH ROUTES
// ========================================
func (r *routes) setupAuthRoutes(v1 *gin.RouterGroup) {
	h := r.c.UserHandler

	v1.POST("/register", h.Register)
	v1.POST("/login", h.Login)
	v1.GET("/session", r.auth, h.Session)
	v1.POST("/logout", r.auth, h.Logout)
}

// ========================================
// BOOK ROUTES
// ========================================
func (r *routes) setupBookRoutes(v1 *gin.RouterGroup) {
	h := r.c.BookHandler
	books := v1.Group("/books")
	{
		books.GET("", r.optional, r.can(authz.Read, authz.Books), h.List)
		books.GET("/:id", r.optional, r.can(authz.Read, authz.Books), h.Show)
		books.POST("", r.auth, r.can(authz.Create, authz.Books), h.Create)
		books.PUT("/:id", r.auth, r.can(authz.Update, authz.Books), h.Update)
		books.DELETE("/:id", r.auth, r.can(authz.Delete, authz.Books), h.Delete)
		books.POST("/ratings", r.auth, r.can(authz.Create, authz.Ratings), h.Rate)
	}
}

// ========================================
// AUTHOR ROUTES
// ========================================
func (r *routes) setupAuthorRoutes(v1 *gin.RouterGroup) {
	h := r.c.AuthorHandler
	authors := v1.Group("/authors", r.auth)
	{
		authors.GET("", r.can(authz.Read, authz.Authors), h.List)
		authors.GET("/:id", r.can(authz.Read, authz.Authors), h.Show)
		authors.POST("", r.can(authz.Create, authz.Authors), h.Create)
		authors.PUT("/:id", r.can(authz.Update, authz.Authors), h.Update)
		authors.DELETE("/:id", r.can(authz.Delete, authz.Authors), h.Delete)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func (r *routes) setupReviewRoutes(v1 *gin.RouterGroup) {
	h := r.c.ReviewHandler
	reviews := v1.Group("/reviews", r.auth)
	{
		reviews.GET("", r.can(authz.Read, authz.Reviews), h.List)
		reviews.GET("/:id", r.can(authz.Read, authz.Reviews), h.Show)
		reviews.POST("", r.can(authz.Create, authz.Reviews), h.Create)
		reviews.PUT("/:id", r.can(authz.SelfUpdate, authz.Reviews), h.Update)
		reviews.DELETE("/:id", r.can(authz.Delete, authz.Reviews), h.Delete)
	}
}

// ========================================
// READING HISTORY ROUTES
// ========================================
func (r *routes) setupReadingHistoryRoutes(v1 *gin.RouterGroup) {
	h := r.c.ReadingHistoryHandler
	histories := v1.Group("/reading_histories", r.auth)
	{
		histories.GET("", r.can(authz.Read, authz.ReadingHistories), h.List)
		histories.GET("/:id", r.can(authz.Read, authz.ReadingHistories), h.Show)
		histories.POST("", r.can(authz.Create, authz.ReadingHistories), h.Create)
		histories.PUT("/:id", r.can(authz.SelfUpdate, authz.ReadingHistories), h.Update)
		histories.DELETE("/:id", r.can(authz.Delete, authz.ReadingHistories), h.Delete)
	}
}

// ========================================
// USER ROUTES
// ========================================
func (r *routes) setupUserRoutes(v1 *gin.RouterGroup) {
	h := r.c.UserHandler
	users := v1.Group("/users", r.auth)
	{
		users.GET("", r.can(authz.Read, authz.Users), h.List)
		users.GET("/:id", r.can(authz.Read, authz.Users), h.Show)
		users.POST("", r.can(authz.Create, authz.Users), h.Create)
		users.PUT("/:id", r.can(authz.SelfUpdate, authz.Users), h.Update)
		users.DELETE("/:id", r.can(authz.Delete, authz.Users), h.Delete)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			ctx.JSON(http.StatusServiceUnavailable, response.ErrorBody{Message: "Database unavailable."})
			return
		}

		response.Success(ctx, http.StatusOK, gin.H{
			"status":   "ok",
			"version":  c.Config.App.Version,
			"database": c.DB.Stats(),
		})
	}
}
