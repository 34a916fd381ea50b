package catalog

import (
	"strings"
	"testing"

	"github.com/learnloop/learnloop-backend/internal/domain"
)

func validCourse(id, slug string) domain.Course {
	return domain.Course{
		ID:          id,
		Slug:        slug,
		Title:       domain.LocalizedText{"en": "Test Course", "ar": "دورة تجريبية"},
		Description: domain.LocalizedText{"en": "A course.", "ar": "دورة."},
		Status:      domain.StatusPublished,
		Difficulty:  domain.DifficultyBeginner,
		Instructor: domain.InstructorInfo{
			Name: "Jane Doe",
			Bio:  domain.LocalizedText{"en": "Teaches things.", "ar": "تدرس الأشياء."},
		},
		Thumbnail:      "/images/test.jpg",
		Price:          domain.CoursePrice{Amount: 0, Currency: "USD", Type: domain.PriceFree},
		EstimatedHours: 2,
		Modules: []domain.ModuleMetadata{{
			ID:               "module1",
			Title:            domain.LocalizedText{"en": "Module One", "ar": "الوحدة الأولى"},
			Description:      domain.LocalizedText{"en": "First module.", "ar": "الوحدة الأولى."},
			Number:           1,
			EstimatedMinutes: 60,
			Lessons: []domain.LessonMetadata{{
				ID:               "lesson1",
				Title:            domain.LocalizedText{"en": "Lesson One", "ar": "الدرس الأول"},
				Description:      domain.LocalizedText{"en": "First lesson.", "ar": "الدرس الأول."},
				Number:           1,
				EstimatedMinutes: 30,
				Slug:             "lesson-one",
			}},
		}},
	}
}

func TestValidateCourseAccepted(t *testing.T) {
	course := validCourse("test-course", "test-course")
	res := ValidateCourse(&course, []domain.Course{course})
	if !res.Valid {
		t.Fatalf("expected valid course, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got: %v", res.Warnings)
	}
}

func TestValidateCourseMissingEnglishTitle(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Title = domain.LocalizedText{"ar": "دورة"}

	res := ValidateCourse(&course, []domain.Course{course})
	if res.Valid {
		t.Fatalf("course without an English title must be invalid")
	}
	if !hasFinding(res.Errors, "English title") {
		t.Fatalf("missing English title not reported: %v", res.Errors)
	}
}

func TestValidateCourseMissingTranslationIsWarning(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Title = domain.LocalizedText{"en": "Test Course"}

	res := ValidateCourse(&course, []domain.Course{course})
	if !res.Valid {
		t.Fatalf("missing translation must not invalidate, got errors: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "Missing ar translation") {
		t.Fatalf("missing ar translation not warned: %v", res.Warnings)
	}
}

func TestValidateCourseBadSlug(t *testing.T) {
	course := validCourse("test-course", "Test_Course!")
	res := ValidateCourse(&course, []domain.Course{course})
	if res.Valid {
		t.Fatalf("uppercase slug must be rejected")
	}
	if !hasFinding(res.Errors, "slug must contain") {
		t.Fatalf("slug format not reported: %v", res.Errors)
	}
}

func TestValidateCourseDuplicateSlug(t *testing.T) {
	a := validCourse("course-a", "shared-slug")
	b := validCourse("course-b", "shared-slug")
	catalog := []domain.Course{a, b}

	res := ValidateCourse(&a, catalog)
	if res.Valid {
		t.Fatalf("duplicate slug must be an error")
	}
	if !hasFinding(res.Errors, "course-b") {
		t.Fatalf("conflicting course id not named: %v", res.Errors)
	}
}

func TestValidateCourseNoModules(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Modules = nil

	res := ValidateCourse(&course, []domain.Course{course})
	if res.Valid || !hasFinding(res.Errors, "At least one module") {
		t.Fatalf("module requirement not enforced: %v", res.Errors)
	}
}

func TestValidateModuleAndLessonFindings(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Modules[0].EstimatedMinutes = 0
	course.Modules[0].Lessons[0].Slug = ""
	course.Modules[0].Lessons[0].Number = 0

	res := ValidateCourse(&course, []domain.Course{course})
	if res.Valid {
		t.Fatalf("expected module and lesson errors")
	}
	if !hasFinding(res.Errors, "Module 1: Estimated minutes") {
		t.Fatalf("module minutes not reported: %v", res.Errors)
	}
	if !hasFinding(res.Errors, "Module 1, Lesson 1: Slug is required") {
		t.Fatalf("lesson slug not reported: %v", res.Errors)
	}
	if !hasFinding(res.Errors, "Module 1, Lesson 1: Number is required") {
		t.Fatalf("lesson number not reported: %v", res.Errors)
	}
}

func TestValidateCoursePriceFindings(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Price = domain.CoursePrice{Amount: 0, Currency: "USD", Type: domain.PricePaid}

	res := ValidateCourse(&course, []domain.Course{course})
	if !res.Valid {
		t.Fatalf("zero-amount paid course is a warning, not an error: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "zero price") {
		t.Fatalf("zero-price warning missing: %v", res.Warnings)
	}

	course.Price.Amount = -5
	res = ValidateCourse(&course, []domain.Course{course})
	if res.Valid || !hasFinding(res.Errors, "negative") {
		t.Fatalf("negative price must be an error: %v", res.Errors)
	}
}

func TestValidateCourseUnknownPrerequisite(t *testing.T) {
	course := validCourse("test-course", "test-course")
	course.Prerequisites = []string{"ghost-course"}

	res := ValidateCourse(&course, []domain.Course{course})
	if !res.Valid {
		t.Fatalf("unknown prerequisite must not invalidate: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, "ghost-course") {
		t.Fatalf("unknown prerequisite not warned: %v", res.Warnings)
	}
}

func TestValidateAllEmbeddedCatalog(t *testing.T) {
	r := newTestRegistry(t)

	valid, results := ValidateAll(r.AllCourses())
	if !valid {
		for _, res := range results {
			if !res.Valid {
				t.Logf("course %s: %v", res.CourseID, res.Errors)
			}
		}
		t.Fatalf("shipped catalog must validate")
	}
}

func TestCheckConsistencyDuplicates(t *testing.T) {
	a := validCourse("course-a", "shared-slug")
	b := validCourse("course-b", "shared-slug")

	report := CheckConsistency([]domain.Course{a, b})
	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "course-a") && strings.Contains(issue, "course-b") {
			found = true
		}
	}
	if !found {
		t.Fatalf("duplicate slug issue must name both course ids: %v", report.Issues)
	}
}

func TestCheckConsistencyRecommendations(t *testing.T) {
	a := validCourse("course-a", "slug-a")
	a.Title = domain.LocalizedText{"en": "Only English"}
	a.Rating = nil
	a.EnrollmentCount = 0

	report := CheckConsistency([]domain.Course{a})
	if !hasFinding(report.Recommendations, "Arabic translations") {
		t.Fatalf("translation recommendation missing: %v", report.Recommendations)
	}
	if !hasFinding(report.Recommendations, "rating") {
		t.Fatalf("rating recommendation missing: %v", report.Recommendations)
	}
	if !hasFinding(report.Recommendations, "enrollment") {
		t.Fatalf("enrollment recommendation missing: %v", report.Recommendations)
	}
}

func TestCourseSummaryFormat(t *testing.T) {
	course := validCourse("test-course", "test-course")
	summary := CourseSummary(&course)
	for _, want := range []string{"Test Course", "test-course", "Modules: 1", "Total Lessons: 1", "1h 0m"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func hasFinding(findings []string, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}
