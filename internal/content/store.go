package content

import (
	"context"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Store reads content documents by their hierarchical path. Single-document
// lookups return (nil, nil) on a miss; list lookups return an empty slice.
type Store interface {
	Course(ctx context.Context, courseID, locale string) (*domain.ContentDocument, error)
	CourseModules(ctx context.Context, courseID, locale string) ([]*domain.ContentDocument, error)
	CourseLessons(ctx context.Context, courseID, locale, moduleID string) ([]*domain.ContentDocument, error)
	Module(ctx context.Context, courseID, locale, moduleID string) (*domain.ContentDocument, error)
	Lesson(ctx context.Context, courseID, locale, moduleID, lessonSlug string) (*domain.ContentDocument, error)
	AllCourses(ctx context.Context, locale string) ([]*domain.ContentDocument, error)
}

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("repo", "ContentStore")}
}

func (s *gormStore) byPath(ctx context.Context, path string) (*domain.ContentDocument, error) {
	var doc domain.ContentDocument
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *gormStore) Course(ctx context.Context, courseID, locale string) (*domain.ContentDocument, error) {
	return s.byPath(ctx, domain.CoursePath(courseID, locale))
}

func (s *gormStore) Module(ctx context.Context, courseID, locale, moduleID string) (*domain.ContentDocument, error) {
	return s.byPath(ctx, domain.ModulePath(courseID, locale, moduleID))
}

func (s *gormStore) Lesson(ctx context.Context, courseID, locale, moduleID, lessonSlug string) (*domain.ContentDocument, error) {
	return s.byPath(ctx, domain.LessonPath(courseID, locale, moduleID, lessonSlug))
}

func (s *gormStore) CourseModules(ctx context.Context, courseID, locale string) ([]*domain.ContentDocument, error) {
	results := []*domain.ContentDocument{}
	if err := s.db.WithContext(ctx).
		Where("course_id = ? AND locale = ? AND kind = ?", courseID, locale, domain.DocKindModule).
		Order("number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CourseLessons returns the lessons of one module, or of the whole course
// when moduleID is empty. Either way the result is ordered by module then
// lesson number, so the flattened course order falls out directly.
func (s *gormStore) CourseLessons(ctx context.Context, courseID, locale, moduleID string) ([]*domain.ContentDocument, error) {
	query := s.db.WithContext(ctx).
		Where("course_id = ? AND locale = ? AND kind = ?", courseID, locale, domain.DocKindLesson)
	if moduleID != "" {
		query = query.Where("module_id = ?", moduleID)
	}

	results := []*domain.ContentDocument{}
	if err := query.Order("module_id ASC, number ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *gormStore) AllCourses(ctx context.Context, locale string) ([]*domain.ContentDocument, error) {
	results := []*domain.ContentDocument{}
	if err := s.db.WithContext(ctx).
		Where("locale = ? AND kind = ?", locale, domain.DocKindCourse).
		Order("course_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
