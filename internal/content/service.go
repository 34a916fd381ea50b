package content

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/pkg/errors"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

// ModuleOutline is one module document with its ordered lesson documents.
type ModuleOutline struct {
	Module  *domain.ContentDocument   `json:"module"`
	Lessons []*domain.ContentDocument `json:"lessons"`
}

// Outline is the fully resolved course content tree for one locale.
type Outline struct {
	Course  *domain.ContentDocument `json:"course"`
	Modules []*ModuleOutline       `json:"modules"`
}

// LessonRef locates one lesson inside the flattened course order.
type LessonRef struct {
	CourseID string `json:"courseId"`
	ModuleID string `json:"moduleId"`
	LessonID string `json:"lessonId"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Path     string `json:"path"`
}

// Navigation is the prev/current/next triple around one lesson.
type Navigation struct {
	Previous *LessonRef `json:"previous,omitempty"`
	Current  *LessonRef `json:"current"`
	Next     *LessonRef `json:"next,omitempty"`
	Index    int        `json:"index"`
	Total    int        `json:"total"`
}

// Stats summarizes a course's content volume.
type Stats struct {
	CourseID     string  `json:"courseId"`
	TotalModules int     `json:"totalModules"`
	TotalLessons int     `json:"totalLessons"`
	TotalHours   float64 `json:"totalHours"`
	HasExercises bool    `json:"hasExercises"`
	HasQuizzes   bool    `json:"hasQuizzes"`
}

// Service answers structured content queries on top of a Store.
type Service struct {
	store Store
	log   *logger.Logger
}

func NewService(store Store, baseLog *logger.Logger) *Service {
	return &Service{store: store, log: baseLog.With("service", "ContentService")}
}

// Outline fetches the course document, its modules, and all lessons
// concurrently, then stitches lessons under their modules.
func (s *Service) Outline(ctx context.Context, courseID, locale string) (*Outline, error) {
	var (
		courseDoc *domain.ContentDocument
		modules   []*domain.ContentDocument
		lessons   []*domain.ContentDocument
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courseDoc, err = s.store.Course(gctx, courseID, locale)
		return err
	})
	g.Go(func() error {
		var err error
		modules, err = s.store.CourseModules(gctx, courseID, locale)
		return err
	})
	g.Go(func() error {
		var err error
		lessons, err = s.store.CourseLessons(gctx, courseID, locale, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if courseDoc == nil {
		return nil, errors.ErrNotFound
	}

	byModule := map[string][]*domain.ContentDocument{}
	for _, lesson := range lessons {
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}

	outline := &Outline{Course: courseDoc, Modules: make([]*ModuleOutline, 0, len(modules))}
	for _, module := range modules {
		outline.Modules = append(outline.Modules, &ModuleOutline{
			Module:  module,
			Lessons: byModule[module.ModuleID],
		})
	}
	return outline, nil
}

// FlattenedLessons returns every lesson of the course in reading order.
func (s *Service) FlattenedLessons(ctx context.Context, courseID, locale string) ([]*LessonRef, error) {
	outline, err := s.Outline(ctx, courseID, locale)
	if err != nil {
		return nil, err
	}
	var refs []*LessonRef
	for _, mod := range outline.Modules {
		for _, lesson := range mod.Lessons {
			refs = append(refs, lessonRef(lesson))
		}
	}
	return refs, nil
}

// Navigate locates the lesson in the flattened course order and returns its
// neighbors. ErrNotFound when the lesson is not part of the course.
func (s *Service) Navigate(ctx context.Context, courseID, locale, moduleID, lessonSlug string) (*Navigation, error) {
	refs, err := s.FlattenedLessons(ctx, courseID, locale)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, ref := range refs {
		if ref.ModuleID == moduleID && ref.Slug == lessonSlug {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.ErrNotFound
	}

	nav := &Navigation{Current: refs[index], Index: index, Total: len(refs)}
	if index > 0 {
		nav.Previous = refs[index-1]
	}
	if index+1 < len(refs) {
		nav.Next = refs[index+1]
	}
	return nav, nil
}

// Stats aggregates lesson counts and time over the course content. Hours
// are rounded to one decimal.
func (s *Service) Stats(ctx context.Context, courseID, locale string) (*Stats, error) {
	outline, err := s.Outline(ctx, courseID, locale)
	if err != nil {
		return nil, err
	}

	stats := &Stats{CourseID: courseID, TotalModules: len(outline.Modules)}
	totalMinutes := 0
	for _, mod := range outline.Modules {
		for _, lesson := range mod.Lessons {
			stats.TotalLessons++
			totalMinutes += lesson.EstimatedMinutes
			if lesson.HasExercise {
				stats.HasExercises = true
			}
			if lesson.HasQuiz {
				stats.HasQuizzes = true
			}
		}
	}
	stats.TotalHours = math.Round(float64(totalMinutes)/60*10) / 10
	return stats, nil
}

func lessonRef(doc *domain.ContentDocument) *LessonRef {
	ref := &LessonRef{
		CourseID: doc.CourseID,
		ModuleID: doc.ModuleID,
		Slug:     doc.Slug,
		Title:    doc.Title,
		Path:     doc.Path,
	}
	// Lesson ids and slugs coincide in the static catalog; the slug is the
	// durable identifier in the content store.
	ref.LessonID = doc.Slug
	return ref
}
