package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/pkg/errors"
	"github.com/learnloop/learnloop-backend/internal/progress"
)

type ProgressHandler struct {
	tracker *progress.Tracker
}

func NewProgressHandler(tracker *progress.Tracker) *ProgressHandler {
	return &ProgressHandler{tracker: tracker}
}

type completeLessonRequest struct {
	TimeSpent int    `json:"timeSpent"`
	Score     *int   `json:"score"`
	UserID    string `json:"userId"`
}

// POST /api/progress/lessons/:courseId/:moduleId/:lessonId/complete
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	var req completeLessonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		RespondError(c, http.StatusBadRequest, "bad_score", fmt.Errorf("%w: score %d out of range", errors.ErrInvalidArgument, *req.Score))
		return
	}

	h.tracker.MarkLessonComplete(
		c.Request.Context(),
		c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"),
		progress.CompleteOptions{TimeSpent: req.TimeSpent, Score: req.Score, UserID: req.UserID},
	)
	RespondOK(c, gin.H{"lesson": h.tracker.LessonProgress(c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))})
}

// POST /api/progress/lessons/:courseId/:moduleId/:lessonId/incomplete
func (h *ProgressHandler) IncompleteLesson(c *gin.Context) {
	h.tracker.MarkLessonIncomplete(c.Request.Context(), c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))
	RespondOK(c, gin.H{"lesson": h.tracker.LessonProgress(c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))})
}

// GET /api/progress/lessons/:courseId/:moduleId/:lessonId
func (h *ProgressHandler) GetLessonProgress(c *gin.Context) {
	lp := h.tracker.LessonProgress(c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))
	if lp == nil {
		RespondError(c, http.StatusNotFound, "no_progress", fmt.Errorf("no progress recorded"))
		return
	}
	RespondOK(c, gin.H{"lesson": lp})
}

// POST /api/progress/lessons/:courseId/:moduleId/:lessonId/bookmark
func (h *ProgressHandler) ToggleBookmark(c *gin.Context) {
	bookmarked := h.tracker.ToggleLessonBookmark(c.Request.Context(), c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))
	RespondOK(c, gin.H{"bookmarked": bookmarked})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// PUT /api/progress/lessons/:courseId/:moduleId/:lessonId/notes
func (h *ProgressHandler) SaveNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.tracker.AddLessonNotes(c.Request.Context(), c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"), req.Notes)
	RespondOK(c, gin.H{"lesson": h.tracker.LessonProgress(c.Param("courseId"), c.Param("moduleId"), c.Param("lessonId"))})
}

type currentLessonRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	ModuleID string `json:"moduleId" binding:"required"`
	LessonID string `json:"lessonId" binding:"required"`
}

// POST /api/progress/current
func (h *ProgressHandler) SetCurrentLesson(c *gin.Context) {
	var req currentLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.tracker.UpdateCurrentLesson(c.Request.Context(), req.CourseID, req.ModuleID, req.LessonID)
	RespondOK(c, gin.H{"course": h.tracker.CourseProgress(req.CourseID)})
}

// GET /api/progress/courses/:courseId
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	cp := h.tracker.CourseProgress(c.Param("courseId"))
	if cp == nil {
		RespondError(c, http.StatusNotFound, "no_progress", fmt.Errorf("no progress recorded"))
		return
	}
	RespondOK(c, gin.H{"course": cp})
}

// GET /api/progress/courses/:courseId/modules/:moduleId
func (h *ProgressHandler) GetModuleProgress(c *gin.Context) {
	percentage := h.tracker.ModuleProgressPercentage(c.Request.Context(), c.Param("courseId"), c.Param("moduleId"))
	mp := h.tracker.ModuleProgress(c.Param("courseId"), c.Param("moduleId"))
	RespondOK(c, gin.H{"module": mp, "completionPercentage": percentage})
}

// GET /api/progress/courses/:courseId/next
func (h *ProgressHandler) NextLesson(c *gin.Context) {
	moduleID, lessonID, ok := h.tracker.NextLesson(c.Param("courseId"))
	if !ok {
		RespondOK(c, gin.H{"next": nil})
		return
	}
	RespondOK(c, gin.H{"next": gin.H{"moduleId": moduleID, "lessonId": lessonID}})
}

// POST /api/progress/courses/:courseId/complete
func (h *ProgressHandler) CompleteCourse(c *gin.Context) {
	h.tracker.MarkCourseCompleted(c.Request.Context(), c.Param("courseId"))
	RespondOK(c, gin.H{"course": h.tracker.CourseProgress(c.Param("courseId"))})
}

// DELETE /api/progress/courses/:courseId
func (h *ProgressHandler) ResetCourse(c *gin.Context) {
	h.tracker.ResetCourseProgress(c.Request.Context(), c.Param("courseId"))
	RespondOK(c, gin.H{"reset": true})
}

// GET /api/progress/bookmarks
func (h *ProgressHandler) ListBookmarks(c *gin.Context) {
	bookmarks := h.tracker.BookmarkedLessons()
	if bookmarks == nil {
		bookmarks = []progress.BookmarkedLesson{}
	}
	RespondOK(c, gin.H{"bookmarks": bookmarks})
}

// GET /api/progress/stats
func (h *ProgressHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.tracker.ProgressStats())
}

// GET /api/progress/export
func (h *ProgressHandler) ExportProgress(c *gin.Context) {
	RespondOK(c, h.tracker.Export())
}

// POST /api/progress/import
func (h *ProgressHandler) ImportProgress(c *gin.Context) {
	var snapshot domain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.tracker.Import(c.Request.Context(), &snapshot)
	RespondOK(c, gin.H{"imported": true})
}

// GET /api/progress/settings
func (h *ProgressHandler) GetSettings(c *gin.Context) {
	RespondOK(c, gin.H{"settings": h.tracker.Settings()})
}

// PUT /api/progress/settings
func (h *ProgressHandler) UpdateSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.tracker.UpdateSettings(c.Request.Context(), settings)
	RespondOK(c, gin.H{"settings": h.tracker.Settings()})
}
