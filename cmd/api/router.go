package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.App.FrontendURL),
	)

	v1 := router.Group("/api/v1")
	// Every route sees an actor; anonymous when no bearer token is sent.
	v1.Use(middleware.Authenticate(c.JWTManager))
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

		setupAuthRoutes(v1, c)
		setupOAuthRoutes(v1, c)
		setupMeRoutes(v1, c)
		setupNovelRoutes(v1, c)
		setupChapterRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupCommentRoutes(v1, c)
		setupCatalogRoutes(v1, c)
		setupDashboardRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.RefreshToken)
		auth.POST("/logout", c.UserHandler.Logout)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password", c.UserHandler.ResetPassword)
		auth.GET("/me", middleware.RequireAuth(), c.UserHandler.GetProfile)
		auth.PUT("/me", middleware.RequireAuth(), c.UserHandler.UpdateProfile)
		auth.PATCH("/me", middleware.RequireAuth(), c.UserHandler.UpdateProfile)
	}
}

// ========================================
// OAUTH ROUTES
// ========================================
func setupOAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	oauth := v1.Group("/auth/oauth")
	{
		oauth.GET("/providers", c.OAuthHandler.Providers)
		oauth.GET("/:provider/start", c.OAuthHandler.Start)
		oauth.GET("/:provider/callback", c.OAuthHandler.Callback)
		oauth.POST("/:provider/token", c.OAuthHandler.TokenLogin)
	}
}

// ========================================
// CURRENT USER ROUTES
// ========================================
func setupMeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	me := v1.Group("/me")
	me.Use(middleware.RequireAuth())
	{
		me.GET("/novels", c.NovelHandler.MyNovels)
		me.GET("/bookmarks", c.NovelHandler.ListBookmarks)
		me.GET("/reviews", c.ReviewHandler.ListMyReviews)
	}
}

// ========================================
// NOVEL ROUTES
// ========================================
func setupNovelRoutes(v1 *gin.RouterGroup, c *container.Container) {
	novels := v1.Group("/novels")
	{
		novels.GET("", c.NovelHandler.ListNovels)
		novels.GET("/trending", c.NovelHandler.Trending)
		novels.GET("/latest", c.NovelHandler.Latest)
		novels.GET("/featured", c.NovelHandler.ListFeatured)
		novels.GET("/:slug", c.NovelHandler.GetNovel)
		novels.POST("/:slug/view", c.NovelHandler.IncrementViews)

		novels.POST("", c.NovelHandler.CreateNovel)
		novels.PUT("/:slug", c.NovelHandler.UpdateNovel)
		novels.DELETE("/:slug", c.NovelHandler.DeleteNovel)
		novels.POST("/:slug/cover", c.NovelHandler.UploadCover)

		novels.POST("/:slug/bookmark", c.NovelHandler.AddBookmark)
		novels.DELETE("/:slug/bookmark", c.NovelHandler.RemoveBookmark)

		novels.GET("/:slug/chapters", c.ChapterHandler.ListChapters)
		novels.POST("/:slug/chapters", c.ChapterHandler.CreateChapter)
		novels.PUT("/:slug/chapters/order", c.ChapterHandler.ReorderChapters)
	}

	v1.GET("/authors/:name/novels", c.NovelHandler.AuthorNovels)

	featured := v1.Group("/featured")
	featured.Use(middleware.RequireAuth(), middleware.AdminMiddleware())
	{
		featured.POST("", c.NovelHandler.FeatureNovel)
		featured.DELETE("/:id", c.NovelHandler.UnfeatureNovel)
	}
}

// ========================================
// CHAPTER AND PARAGRAPH ROUTES
// ========================================
func setupChapterRoutes(v1 *gin.RouterGroup, c *container.Container) {
	chapters := v1.Group("/chapters")
	{
		chapters.GET("/:id", c.ChapterHandler.GetChapter)
		chapters.PUT("/:id", c.ChapterHandler.UpdateChapter)
		chapters.DELETE("/:id", c.ChapterHandler.DeleteChapter)
		chapters.GET("/:id/stats", c.ChapterHandler.ChapterStats)
		chapters.POST("/:id/autosave", c.ChapterHandler.Autosave)

		chapters.GET("/:id/paragraphs", c.ChapterHandler.ListParagraphs)
		chapters.POST("/:id/paragraphs", c.ChapterHandler.CreateParagraph)
	}

	paragraphs := v1.Group("/paragraphs")
	{
		paragraphs.PUT("/:id", c.ChapterHandler.UpdateParagraph)
		paragraphs.DELETE("/:id", c.ChapterHandler.DeleteParagraph)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reviews := v1.Group("/reviews")
	{
		reviews.GET("", c.ReviewHandler.ListReviews)
		reviews.GET("/:id", c.ReviewHandler.GetReview)
		reviews.POST("", c.ReviewHandler.CreateReview)
		reviews.PUT("/:id", c.ReviewHandler.UpdateReview)
		reviews.DELETE("/:id", c.ReviewHandler.DeleteReview)
	}
}

// ========================================
// COMMENT ROUTES
// ========================================
func setupCommentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	comments := v1.Group("/comments")
	{
		comments.GET("", c.CommentHandler.ListComments)
		comments.GET("/:id", c.CommentHandler.GetComment)
		comments.GET("/:id/thread", c.CommentHandler.GetThread)
		comments.POST("", c.CommentHandler.CreateComment)
		comments.PUT("/:id", c.CommentHandler.UpdateComment)
		comments.DELETE("/:id", c.CommentHandler.DeleteComment)
	}
}

// ========================================
// CATALOG ROUTES
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	tags := v1.Group("/tags")
	{
		tags.GET("", c.TagHandler.List)
		tags.GET("/:id", c.TagHandler.Get)
		tags.POST("", middleware.RequireAuth(), c.TagHandler.Create)
		tags.PUT("/:id", middleware.RequireAuth(), c.TagHandler.Update)
		tags.DELETE("/:id", middleware.RequireAuth(), c.TagHandler.Delete)
	}

	genres := v1.Group("/genres")
	{
		genres.GET("", c.GenreHandler.List)
		genres.GET("/:id", c.GenreHandler.Get)
		genres.POST("", middleware.RequireAuth(), c.GenreHandler.Create)
		genres.PUT("/:id", middleware.RequireAuth(), c.GenreHandler.Update)
		genres.DELETE("/:id", middleware.RequireAuth(), c.GenreHandler.Delete)
	}
}

// ========================================
// DASHBOARD ROUTES
// ========================================
func setupDashboardRoutes(v1 *gin.RouterGroup, c *container.Container) {
	dashboard := v1.Group("/dashboard")
	dashboard.Use(middleware.RequireAuth())
	{
		dashboard.GET("/stats", c.DashboardHandler.GetStats)
		dashboard.GET("/stats/export", c.DashboardHandler.ExportStats)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.DB.Ping(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
			health["status"] = "degraded"
		}

		services := gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}
		if stats, err := appCtx.DB.Stats(); err == nil {
			services["pool"] = stats
		}
		health["services"] = services

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
