package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/learnloop/learnloop-backend/internal/catalog"
	"github.com/learnloop/learnloop-backend/internal/domain"
)

type CatalogHandler struct {
	registry *catalog.Registry
}

func NewCatalogHandler(registry *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{registry: registry}
}

// GET /api/courses
//
// Query params: q (search), difficulty, technology, category, price, status
// (each comma-separated), minHours, maxHours, sortBy, order, locale.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	locale := c.DefaultQuery("locale", "en")

	if query := c.Query("q"); query != "" {
		RespondOK(c, gin.H{"courses": h.registry.Search(query, locale)})
		return
	}

	filters := domain.CourseFilters{
		Difficulties: splitParam(c.Query("difficulty")),
		Technologies: splitParam(c.Query("technology")),
		Categories:   splitParam(c.Query("category")),
		PriceTypes:   splitParam(c.Query("price")),
		Statuses:     splitParam(c.Query("status")),
	}
	if v := c.Query("minHours"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_min_hours", err)
			return
		}
		filters.MinHours = &f
	}
	if v := c.Query("maxHours"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_max_hours", err)
			return
		}
		filters.MaxHours = &f
	}

	courses := h.registry.Filter(filters)

	if sortBy := c.Query("sortBy"); sortBy != "" {
		opts := domain.SortOptions{
			Field:      domain.SortField(sortBy),
			Descending: c.Query("order") == "desc",
		}
		courses = h.registry.Sort(courses, opts, locale)
	}

	RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/featured
func (h *CatalogHandler) FeaturedCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
	RespondOK(c, gin.H{"courses": h.registry.Featured(limit)})
}

// GET /api/courses/:id
//
// Accepts a course id or slug.
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	course, ok := h.registry.CourseByID(id)
	if !ok {
		course, ok = h.registry.CourseBySlug(id)
	}
	if !ok {
		RespondError(c, http.StatusNotFound, "course_not_found", fmt.Errorf("course %q not found", id))
		return
	}
	RespondOK(c, gin.H{"course": course})
}

// GET /api/courses/:id/related
func (h *CatalogHandler) RelatedCourses(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.registry.CourseByID(id); !ok {
		RespondError(c, http.StatusNotFound, "course_not_found", fmt.Errorf("course %q not found", id))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
	RespondOK(c, gin.H{"courses": h.registry.Related(id, limit)})
}

// GET /api/catalog/meta
func (h *CatalogHandler) CatalogMeta(c *gin.Context) {
	RespondOK(c, gin.H{
		"categories":       h.registry.Categories(),
		"technologies":     h.registry.Technologies(),
		"difficultyLevels": h.registry.DifficultyLevels(),
	})
}

// GET /api/catalog/validation
func (h *CatalogHandler) ValidationReport(c *gin.Context) {
	courses := h.registry.AllCourses()
	valid, results := catalog.ValidateAll(courses)
	RespondOK(c, gin.H{
		"valid":       valid,
		"results":     results,
		"consistency": catalog.CheckConsistency(courses),
	})
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
