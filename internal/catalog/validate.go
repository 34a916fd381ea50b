package catalog

import (
	"fmt"
	"regexp"

	"github.com/learnloop/learnloop-backend/internal/domain"
)

// BaseLocale is the only locale whose translations are mandatory; the rest
// of SupportedLocales produce warnings when missing.
const BaseLocale = "en"

var SupportedLocales = []string{"en", "ar"}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Result collects the findings for one course. Errors make the course
// invalid; warnings are advisory only.
type Result struct {
	CourseID string   `json:"courseId"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type ConsistencyReport struct {
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ValidateCourse checks a single course against the whole catalog (the
// catalog is needed for slug-uniqueness and prerequisite resolution).
// Findings are collected, never returned as Go errors, so one invalid
// course does not block validating the rest.
func ValidateCourse(course *domain.Course, catalog []domain.Course) Result {
	res := Result{CourseID: course.ID, Errors: []string{}, Warnings: []string{}}

	if course.ID == "" {
		res.Errors = append(res.Errors, "Course ID is required")
	}
	if course.Title[BaseLocale] == "" {
		res.Errors = append(res.Errors, "English title is required")
	}
	if course.Description[BaseLocale] == "" {
		res.Errors = append(res.Errors, "English description is required")
	}
	if course.Slug == "" {
		res.Errors = append(res.Errors, "Course slug is required")
	}
	if course.Instructor.Name == "" {
		res.Errors = append(res.Errors, "Instructor name is required")
	}
	if course.Thumbnail == "" {
		res.Errors = append(res.Errors, "Course thumbnail is required")
	}

	if course.Slug != "" && !slugPattern.MatchString(course.Slug) {
		res.Errors = append(res.Errors, "Course slug must contain only lowercase letters, numbers, and hyphens")
	}

	for i := range catalog {
		other := &catalog[i]
		if other.Slug == course.Slug && other.ID != course.ID {
			res.Errors = append(res.Errors, fmt.Sprintf("Course slug %q is already used by course %q", course.Slug, other.ID))
			break
		}
	}

	if len(course.Modules) == 0 {
		res.Errors = append(res.Errors, "At least one module is required")
	} else {
		for i := range course.Modules {
			validateModule(&course.Modules[i], i+1, &res)
		}
	}

	if len(course.Prerequisites) > 0 {
		var unknown []string
		for _, prereq := range course.Prerequisites {
			found := false
			for i := range catalog {
				if catalog[i].ID == prereq {
					found = true
					break
				}
			}
			if !found {
				unknown = append(unknown, prereq)
			}
		}
		if len(unknown) > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Unknown prerequisites: %s", joinStrings(unknown)))
		}
	}

	if course.Price.Amount < 0 {
		res.Errors = append(res.Errors, "Price amount cannot be negative")
	}
	if course.Price.Type == domain.PricePaid && course.Price.Amount == 0 {
		res.Warnings = append(res.Warnings, "Paid course has zero price amount")
	}
	if course.Price.Type == domain.PriceFree && course.Price.Amount > 0 {
		res.Warnings = append(res.Warnings, "Free course has non-zero price amount")
	}

	if course.EstimatedHours <= 0 {
		res.Errors = append(res.Errors, "Estimated hours must be positive")
	}

	for _, locale := range SupportedLocales {
		if locale == BaseLocale {
			continue
		}
		if course.Title[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Missing %s translation for course title", locale))
		}
		if course.Description[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Missing %s translation for course description", locale))
		}
		if course.Instructor.Bio[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Missing %s translation for instructor bio", locale))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func validateModule(module *domain.ModuleMetadata, moduleNumber int, res *Result) {
	prefix := fmt.Sprintf("Module %d", moduleNumber)

	if module.ID == "" {
		res.Errors = append(res.Errors, prefix+": ID is required")
	}
	if module.Title[BaseLocale] == "" {
		res.Errors = append(res.Errors, prefix+": English title is required")
	}
	if module.Description[BaseLocale] == "" {
		res.Errors = append(res.Errors, prefix+": English description is required")
	}
	if module.Number <= 0 {
		res.Errors = append(res.Errors, prefix+": Number is required")
	}
	if module.EstimatedMinutes <= 0 {
		res.Errors = append(res.Errors, prefix+": Estimated minutes must be a positive number")
	}

	if len(module.Lessons) == 0 {
		res.Errors = append(res.Errors, prefix+": At least one lesson is required")
	} else {
		for i := range module.Lessons {
			validateLesson(&module.Lessons[i], moduleNumber, i+1, res)
		}
	}

	for _, locale := range SupportedLocales {
		if locale == BaseLocale {
			continue
		}
		if module.Title[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: Missing %s translation for title", prefix, locale))
		}
		if module.Description[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: Missing %s translation for description", prefix, locale))
		}
	}
}

func validateLesson(lesson *domain.LessonMetadata, moduleNumber, lessonNumber int, res *Result) {
	prefix := fmt.Sprintf("Module %d, Lesson %d", moduleNumber, lessonNumber)

	if lesson.ID == "" {
		res.Errors = append(res.Errors, prefix+": ID is required")
	}
	if lesson.Title[BaseLocale] == "" {
		res.Errors = append(res.Errors, prefix+": English title is required")
	}
	if lesson.Description[BaseLocale] == "" {
		res.Errors = append(res.Errors, prefix+": English description is required")
	}
	if lesson.Slug == "" {
		res.Errors = append(res.Errors, prefix+": Slug is required")
	}
	if lesson.Number <= 0 {
		res.Errors = append(res.Errors, prefix+": Number is required")
	}
	if lesson.EstimatedMinutes <= 0 {
		res.Errors = append(res.Errors, prefix+": Estimated minutes must be a positive number")
	}

	if lesson.Slug != "" && !slugPattern.MatchString(lesson.Slug) {
		res.Errors = append(res.Errors, prefix+": Slug must contain only lowercase letters, numbers, and hyphens")
	}

	for _, locale := range SupportedLocales {
		if locale == BaseLocale {
			continue
		}
		if lesson.Title[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: Missing %s translation for title", prefix, locale))
		}
		if lesson.Description[locale] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: Missing %s translation for description", prefix, locale))
		}
	}
}

// ValidateAll validates every course in the catalog.
func ValidateAll(catalog []domain.Course) (bool, []Result) {
	results := make([]Result, 0, len(catalog))
	valid := true
	for i := range catalog {
		res := ValidateCourse(&catalog[i], catalog)
		if !res.Valid {
			valid = false
		}
		results = append(results, res)
	}
	return valid, results
}

// CheckConsistency scans the whole catalog for cross-course problems:
// duplicate ids and slugs become issues, missing optional data becomes
// aggregate recommendations.
func CheckConsistency(catalog []domain.Course) ConsistencyReport {
	report := ConsistencyReport{Issues: []string{}, Recommendations: []string{}}

	seenIDs := map[string][]string{}
	seenSlugs := map[string][]string{}
	for i := range catalog {
		c := &catalog[i]
		seenIDs[c.ID] = append(seenIDs[c.ID], c.ID)
		seenSlugs[c.Slug] = append(seenSlugs[c.Slug], c.ID)
	}
	for id, owners := range seenIDs {
		if len(owners) > 1 {
			report.Issues = append(report.Issues, fmt.Sprintf("Duplicate course ID %q used by %d courses", id, len(owners)))
		}
	}
	for slug, owners := range seenSlugs {
		if len(owners) > 1 {
			report.Issues = append(report.Issues, fmt.Sprintf("Duplicate course slug %q used by courses: %s", slug, joinStrings(owners)))
		}
	}

	missingTranslations := 0
	missingRatings := 0
	missingEnrollment := 0
	for i := range catalog {
		c := &catalog[i]
		if c.Title["ar"] == "" || c.Description["ar"] == "" {
			missingTranslations++
		}
		if c.Rating == nil {
			missingRatings++
		}
		if c.EnrollmentCount == 0 {
			missingEnrollment++
		}
	}
	if missingTranslations > 0 {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf("%d courses missing Arabic translations", missingTranslations))
	}
	if missingRatings > 0 {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf("%d courses missing rating information", missingRatings))
	}
	if missingEnrollment > 0 {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf("%d courses missing enrollment count", missingEnrollment))
	}

	return report
}

// CourseSummary renders a human-readable block for the validation CLI.
func CourseSummary(course *domain.Course) string {
	totalMinutes := course.TotalMinutes()
	return fmt.Sprintf(
		"Course: %s (%s)\n- Status: %s\n- Difficulty: %s\n- Modules: %d\n- Total Lessons: %d\n- Estimated Time: %dh %dm\n- Technologies: %s\n- Categories: %s\n- Price: %s (%.0f %s)",
		course.Title.Get(BaseLocale), course.ID,
		course.Status,
		course.Difficulty,
		len(course.Modules),
		course.TotalLessons(),
		totalMinutes/60, totalMinutes%60,
		joinStrings(course.Technologies),
		joinStrings(course.Categories),
		course.Price.Type, course.Price.Amount, course.Price.Currency,
	)
}

func joinStrings(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
