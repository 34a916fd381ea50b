package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	DocKindCourse = "course"
	DocKindModule = "module"
	DocKindLesson = "lesson"
)

// ContentDocument is one entry in the content store, addressed by a
// locale-scoped hierarchical path. The denormalized columns exist for the
// sort-by-number directive and for cache invalidation by course.
type ContentDocument struct {
	Path             string         `gorm:"primaryKey" json:"path"`
	CourseID         string         `gorm:"index;not null" json:"courseId"`
	Locale           string         `gorm:"index;not null" json:"locale"`
	Kind             string         `gorm:"index;not null" json:"kind"`
	ModuleID         string         `gorm:"index" json:"moduleId,omitempty"`
	Slug             string         `json:"slug,omitempty"`
	Number           int            `gorm:"not null;default:0" json:"number"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	EstimatedMinutes int            `json:"estimatedMinutes,omitempty"`
	HasExercise      bool           `json:"hasExercise,omitempty"`
	HasQuiz          bool           `json:"hasQuiz,omitempty"`
	Payload          datatypes.JSON `gorm:"type:json" json:"payload,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (ContentDocument) TableName() string { return "content_documents" }

func CoursePath(courseID, locale string) string {
	return fmt.Sprintf("courses/%s/%s/course", courseID, locale)
}

func ModulePath(courseID, locale, moduleID string) string {
	return fmt.Sprintf("courses/%s/%s/modules/%s/module", courseID, locale, moduleID)
}

func LessonPath(courseID, locale, moduleID, lessonSlug string) string {
	return fmt.Sprintf("courses/%s/%s/modules/%s/lessons/%s", courseID, locale, moduleID, lessonSlug)
}
