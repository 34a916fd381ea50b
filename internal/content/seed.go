package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuildDocuments flattens one course into its content documents for a
// single locale: one course node, one node per module, one per lesson.
func BuildDocuments(course *domain.Course, locale string) ([]*domain.ContentDocument, error) {
	coursePayload, err := json.Marshal(course)
	if err != nil {
		return nil, fmt.Errorf("marshal course %s: %w", course.ID, err)
	}

	docs := []*domain.ContentDocument{{
		Path:             domain.CoursePath(course.ID, locale),
		CourseID:         course.ID,
		Locale:           locale,
		Kind:             domain.DocKindCourse,
		Slug:             course.Slug,
		Title:            course.Title.Get(locale),
		Description:      course.Description.Get(locale),
		EstimatedMinutes: course.TotalMinutes(),
		Payload:          coursePayload,
	}}

	for i := range course.Modules {
		module := &course.Modules[i]
		modulePayload, err := json.Marshal(module)
		if err != nil {
			return nil, fmt.Errorf("marshal module %s.%s: %w", course.ID, module.ID, err)
		}
		docs = append(docs, &domain.ContentDocument{
			Path:             domain.ModulePath(course.ID, locale, module.ID),
			CourseID:         course.ID,
			Locale:           locale,
			Kind:             domain.DocKindModule,
			ModuleID:         module.ID,
			Number:           module.Number,
			Title:            module.Title.Get(locale),
			Description:      module.Description.Get(locale),
			EstimatedMinutes: module.EstimatedMinutes,
			Payload:          modulePayload,
		})

		for j := range module.Lessons {
			lesson := &module.Lessons[j]
			lessonPayload, err := json.Marshal(lesson)
			if err != nil {
				return nil, fmt.Errorf("marshal lesson %s.%s.%s: %w", course.ID, module.ID, lesson.ID, err)
			}
			docs = append(docs, &domain.ContentDocument{
				Path:             domain.LessonPath(course.ID, locale, module.ID, lesson.Slug),
				CourseID:         course.ID,
				Locale:           locale,
				Kind:             domain.DocKindLesson,
				ModuleID:         module.ID,
				Slug:             lesson.Slug,
				Number:           lesson.Number,
				Title:            lesson.Title.Get(locale),
				Description:      lesson.Description.Get(locale),
				EstimatedMinutes: lesson.EstimatedMinutes,
				HasExercise:      lesson.HasExercise,
				HasQuiz:          lesson.HasQuiz,
				Payload:          lessonPayload,
			})
		}
	}
	return docs, nil
}

// Seed upserts the content documents for every course and locale. Re-seeding
// is idempotent: existing paths are overwritten in place.
func Seed(ctx context.Context, db *gorm.DB, courses []domain.Course, locales []string, baseLog *logger.Logger) error {
	log := baseLog.With("service", "ContentSeeder")

	total := 0
	for i := range courses {
		for _, locale := range locales {
			docs, err := BuildDocuments(&courses[i], locale)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				continue
			}
			if err := db.WithContext(ctx).
				Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&docs).Error; err != nil {
				return fmt.Errorf("seed course %s (%s): %w", courses[i].ID, locale, err)
			}
			total += len(docs)
		}
	}
	log.Info("Content store seeded", "documents", total, "courses", len(courses), "locales", len(locales))
	return nil
}
