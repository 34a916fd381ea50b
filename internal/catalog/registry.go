package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Courses          []domain.Course           `yaml:"courses"`
	Categories       []domain.Category         `yaml:"categories"`
	Technologies     []domain.Tag              `yaml:"technologies"`
	DifficultyLevels []domain.DifficultyLevel  `yaml:"difficultyLevels"`
}

// Registry is the read-only in-memory index over the static course catalog.
type Registry struct {
	courses          []domain.Course
	byID             map[string]*domain.Course
	bySlug           map[string]*domain.Course
	categories       []domain.Category
	technologies     []domain.Tag
	difficultyLevels []domain.DifficultyLevel
	log              *logger.Logger
}

// New loads the embedded catalog.
func New(baseLog *logger.Logger) (*Registry, error) {
	return NewFromYAML(catalogYAML, baseLog)
}

func NewFromYAML(data []byte, baseLog *logger.Logger) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	r := &Registry{
		courses:          file.Courses,
		byID:             make(map[string]*domain.Course, len(file.Courses)),
		bySlug:           make(map[string]*domain.Course, len(file.Courses)),
		categories:       file.Categories,
		technologies:     file.Technologies,
		difficultyLevels: file.DifficultyLevels,
		log:              baseLog.With("service", "CourseRegistry"),
	}
	for i := range r.courses {
		c := &r.courses[i]
		r.byID[c.ID] = c
		r.bySlug[c.Slug] = c
	}
	r.log.Info("Catalog loaded", "courses", len(r.courses))
	return r, nil
}

func (r *Registry) AllCourses() []domain.Course {
	out := make([]domain.Course, len(r.courses))
	copy(out, r.courses)
	return out
}

func (r *Registry) CourseByID(courseID string) (*domain.Course, bool) {
	c, ok := r.byID[courseID]
	return c, ok
}

func (r *Registry) CourseBySlug(slug string) (*domain.Course, bool) {
	c, ok := r.bySlug[slug]
	return c, ok
}

func (r *Registry) PublishedCourses() []domain.Course {
	var out []domain.Course
	for _, c := range r.courses {
		if c.Status == domain.StatusPublished {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) CoursesByCategory(categoryID string) []domain.Course {
	var out []domain.Course
	for _, c := range r.PublishedCourses() {
		if contains(c.Categories, categoryID) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) CoursesByTechnology(technology string) []domain.Course {
	var out []domain.Course
	for _, c := range r.PublishedCourses() {
		if contains(c.Technologies, technology) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) CoursesByDifficulty(difficulty string) []domain.Course {
	var out []domain.Course
	for _, c := range r.PublishedCourses() {
		if c.Difficulty == difficulty {
			out = append(out, c)
		}
	}
	return out
}

// Search matches the query against the localized title and description plus
// the technology and tag lists.
func (r *Registry) Search(query, locale string) []domain.Course {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}
	var out []domain.Course
	for _, c := range r.courses {
		title := strings.ToLower(c.Title.Get(locale))
		description := strings.ToLower(c.Description.Get(locale))
		technologies := strings.ToLower(strings.Join(c.Technologies, " "))
		tags := strings.ToLower(strings.Join(c.Tags, " "))
		if strings.Contains(title, term) ||
			strings.Contains(description, term) ||
			strings.Contains(technologies, term) ||
			strings.Contains(tags, term) {
			out = append(out, c)
		}
	}
	return out
}

// Filter applies every populated dimension with AND semantics; a
// multi-valued dimension matches when ANY of its values matches. Statuses
// defaults to published-only when unset.
func (r *Registry) Filter(filters domain.CourseFilters) []domain.Course {
	base := r.courses
	var out []domain.Course
	for _, c := range base {
		if len(filters.Statuses) > 0 {
			if !contains(filters.Statuses, c.Status) {
				continue
			}
		} else if c.Status != domain.StatusPublished {
			continue
		}
		if len(filters.Difficulties) > 0 && !contains(filters.Difficulties, c.Difficulty) {
			continue
		}
		if len(filters.Technologies) > 0 && !containsAny(c.Technologies, filters.Technologies) {
			continue
		}
		if len(filters.Categories) > 0 && !containsAny(c.Categories, filters.Categories) {
			continue
		}
		if len(filters.PriceTypes) > 0 && !contains(filters.PriceTypes, c.Price.Type) {
			continue
		}
		if filters.MinHours != nil && c.EstimatedHours < *filters.MinHours {
			continue
		}
		if filters.MaxHours != nil && c.EstimatedHours > *filters.MaxHours {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort returns a sorted copy; the input is not modified.
func (r *Registry) Sort(courses []domain.Course, opts domain.SortOptions, locale string) []domain.Course {
	out := make([]domain.Course, len(courses))
	copy(out, courses)

	less := func(a, b *domain.Course) bool {
		switch opts.Field {
		case domain.SortByDifficulty:
			return domain.DifficultyRank(a.Difficulty) < domain.DifficultyRank(b.Difficulty)
		case domain.SortByHours:
			return a.EstimatedHours < b.EstimatedHours
		case domain.SortByCreatedAt:
			return a.CreatedTime().Before(b.CreatedTime())
		case domain.SortByRating:
			return ratingOf(a) < ratingOf(b)
		case domain.SortByEnrollment:
			return a.EnrollmentCount < b.EnrollmentCount
		default:
			return strings.ToLower(a.Title.Get(locale)) < strings.ToLower(b.Title.Get(locale))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if opts.Descending {
			return less(&out[j], &out[i])
		}
		return less(&out[i], &out[j])
	})
	return out
}

// Featured returns the top published courses rated 4.5 or better.
func (r *Registry) Featured(limit int) []domain.Course {
	if limit <= 0 {
		limit = 3
	}
	var rated []domain.Course
	for _, c := range r.PublishedCourses() {
		if c.Rating != nil && c.Rating.Average >= 4.5 {
			rated = append(rated, c)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return ratingOf(&rated[i]) > ratingOf(&rated[j])
	})
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated
}

// Related returns published courses sharing a technology or category with
// the given course.
func (r *Registry) Related(courseID string, limit int) []domain.Course {
	if limit <= 0 {
		limit = 3
	}
	course, ok := r.CourseByID(courseID)
	if !ok {
		return nil
	}
	var out []domain.Course
	for _, c := range r.PublishedCourses() {
		if c.ID == courseID {
			continue
		}
		if containsAny(c.Technologies, course.Technologies) || containsAny(c.Categories, course.Categories) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func (r *Registry) Categories() []domain.Category { return r.categories }

func (r *Registry) Technologies() []domain.Tag { return r.technologies }

func (r *Registry) DifficultyLevels() []domain.DifficultyLevel { return r.difficultyLevels }

func ratingOf(c *domain.Course) float64 {
	if c.Rating == nil {
		return 0
	}
	return c.Rating.Average
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsAny(list, values []string) bool {
	for _, v := range values {
		if contains(list, v) {
			return true
		}
	}
	return false
}
