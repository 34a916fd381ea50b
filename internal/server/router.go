package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/handlers"
	"github.com/learnloop/learnloop-backend/internal/middleware"
)

type RouterConfig struct {
	CatalogHandler  *handlers.CatalogHandler
	ContentHandler  *handlers.ContentHandler
	ProgressHandler *handlers.ProgressHandler
	RequestLogger   *middleware.RequestLogger
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Handler())
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Catalog
		api.GET("/courses", cfg.CatalogHandler.ListCourses)
		api.GET("/courses/featured", cfg.CatalogHandler.FeaturedCourses)
		api.GET("/courses/:id", cfg.CatalogHandler.GetCourse)
		api.GET("/courses/:id/related", cfg.CatalogHandler.RelatedCourses)
		api.GET("/catalog/meta", cfg.CatalogHandler.CatalogMeta)
		api.GET("/catalog/validation", cfg.CatalogHandler.ValidationReport)

		// Content
		api.GET("/courses/:id/content", cfg.ContentHandler.CourseOutline)
		api.GET("/courses/:id/modules", cfg.ContentHandler.ListModules)
		api.GET("/courses/:id/modules/:moduleId/lessons", cfg.ContentHandler.ListLessons)
		api.GET("/courses/:id/modules/:moduleId/lessons/:slug", cfg.ContentHandler.GetLesson)
		api.GET("/courses/:id/modules/:moduleId/lessons/:slug/navigation", cfg.ContentHandler.LessonNavigation)
		api.GET("/courses/:id/stats", cfg.ContentHandler.CourseStats)

		// Progress
		prog := api.Group("/progress")
		{
			prog.GET("/stats", cfg.ProgressHandler.GetStats)
			prog.GET("/export", cfg.ProgressHandler.ExportProgress)
			prog.POST("/import", cfg.ProgressHandler.ImportProgress)
			prog.GET("/bookmarks", cfg.ProgressHandler.ListBookmarks)
			prog.GET("/settings", cfg.ProgressHandler.GetSettings)
			prog.PUT("/settings", cfg.ProgressHandler.UpdateSettings)
			prog.POST("/current", cfg.ProgressHandler.SetCurrentLesson)

			prog.GET("/courses/:courseId", cfg.ProgressHandler.GetCourseProgress)
			prog.GET("/courses/:courseId/modules/:moduleId", cfg.ProgressHandler.GetModuleProgress)
			prog.GET("/courses/:courseId/next", cfg.ProgressHandler.NextLesson)
			prog.POST("/courses/:courseId/complete", cfg.ProgressHandler.CompleteCourse)
			prog.DELETE("/courses/:courseId", cfg.ProgressHandler.ResetCourse)

			prog.GET("/lessons/:courseId/:moduleId/:lessonId", cfg.ProgressHandler.GetLessonProgress)
			prog.POST("/lessons/:courseId/:moduleId/:lessonId/complete", cfg.ProgressHandler.CompleteLesson)
			prog.POST("/lessons/:courseId/:moduleId/:lessonId/incomplete", cfg.ProgressHandler.IncompleteLesson)
			prog.POST("/lessons/:courseId/:moduleId/:lessonId/bookmark", cfg.ProgressHandler.ToggleBookmark)
			prog.PUT("/lessons/:courseId/:moduleId/:lessonId/notes", cfg.ProgressHandler.SaveNotes)
		}
	}

	return router
}
