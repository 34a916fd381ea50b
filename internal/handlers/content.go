package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/content"
	"github.com/learnloop/learnloop-backend/internal/pkg/errors"
)

type ContentHandler struct {
	store   content.Store
	service *content.Service
}

func NewContentHandler(store content.Store, service *content.Service) *ContentHandler {
	return &ContentHandler{store: store, service: service}
}

// GET /api/courses/:id/content
func (h *ContentHandler) CourseOutline(c *gin.Context) {
	courseID := c.Param("id")
	locale := c.DefaultQuery("locale", "en")

	outline, err := h.service.Outline(c.Request.Context(), courseID, locale)
	if err == errors.ErrNotFound {
		RespondError(c, http.StatusNotFound, "course_not_found", fmt.Errorf("course %q not found", courseID))
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	RespondOK(c, outline)
}

// GET /api/courses/:id/modules
func (h *ContentHandler) ListModules(c *gin.Context) {
	modules, err := h.store.CourseModules(c.Request.Context(), c.Param("id"), c.DefaultQuery("locale", "en"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

// GET /api/courses/:id/modules/:moduleId/lessons
func (h *ContentHandler) ListLessons(c *gin.Context) {
	lessons, err := h.store.CourseLessons(
		c.Request.Context(),
		c.Param("id"),
		c.DefaultQuery("locale", "en"),
		c.Param("moduleId"),
	)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

// GET /api/courses/:id/modules/:moduleId/lessons/:slug
func (h *ContentHandler) GetLesson(c *gin.Context) {
	doc, err := h.store.Lesson(
		c.Request.Context(),
		c.Param("id"),
		c.DefaultQuery("locale", "en"),
		c.Param("moduleId"),
		c.Param("slug"),
	)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	if doc == nil {
		RespondError(c, http.StatusNotFound, "lesson_not_found", fmt.Errorf("lesson %q not found", c.Param("slug")))
		return
	}
	RespondOK(c, gin.H{"lesson": doc})
}

// GET /api/courses/:id/modules/:moduleId/lessons/:slug/navigation
func (h *ContentHandler) LessonNavigation(c *gin.Context) {
	nav, err := h.service.Navigate(
		c.Request.Context(),
		c.Param("id"),
		c.DefaultQuery("locale", "en"),
		c.Param("moduleId"),
		c.Param("slug"),
	)
	if err == errors.ErrNotFound {
		RespondError(c, http.StatusNotFound, "lesson_not_found", fmt.Errorf("lesson %q not found", c.Param("slug")))
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	RespondOK(c, nav)
}

// GET /api/courses/:id/stats
func (h *ContentHandler) CourseStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"), c.DefaultQuery("locale", "en"))
	if err == errors.ErrNotFound {
		RespondError(c, http.StatusNotFound, "course_not_found", fmt.Errorf("course %q not found", c.Param("id")))
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "content_error", err)
		return
	}
	RespondOK(c, stats)
}
