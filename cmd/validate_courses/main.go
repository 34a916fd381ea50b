package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/learnloop/learnloop-backend/internal/catalog"
	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

func main() {
	registry, err := catalog.New(logger.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	courses := registry.AllCourses()

	fmt.Println("Validating course configuration...")
	fmt.Println()

	fmt.Println("Validating individual courses:")
	allValid, results := catalog.ValidateAll(courses)
	for _, res := range results {
		status := "OK  "
		if !res.Valid {
			status = "FAIL"
		}
		fmt.Printf("%s Course: %s\n", status, res.CourseID)
		if len(res.Errors) > 0 {
			fmt.Println("   Errors:")
			for _, e := range res.Errors {
				fmt.Printf("     - %s\n", e)
			}
		}
		if len(res.Warnings) > 0 {
			fmt.Println("   Warnings:")
			for _, w := range res.Warnings {
				fmt.Printf("     - %s\n", w)
			}
		}
		fmt.Println()
	}

	fmt.Println("Checking configuration consistency:")
	consistency := catalog.CheckConsistency(courses)
	if len(consistency.Issues) > 0 {
		fmt.Println("Issues found:")
		for _, issue := range consistency.Issues {
			fmt.Printf("   - %s\n", issue)
		}
	} else {
		fmt.Println("No consistency issues found")
	}
	if len(consistency.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, rec := range consistency.Recommendations {
			fmt.Printf("   - %s\n", rec)
		}
	}
	fmt.Println()

	fmt.Println("Course Summaries:")
	fmt.Println(strings.Repeat("=", 50))
	for i := range courses {
		fmt.Println(catalog.CourseSummary(&courses[i]))
		fmt.Println(strings.Repeat("-", 50))
	}

	printStatistics(courses)

	if allValid {
		fmt.Println("\nAll courses valid.")
	} else {
		fmt.Println("\nSome courses have issues.")
		os.Exit(1)
	}
}

func printStatistics(courses []domain.Course) {
	published, draft, free, paid := 0, 0, 0, 0
	totalLessons := 0
	ratingSum := 0.0
	rated := 0
	for i := range courses {
		c := &courses[i]
		switch c.Status {
		case domain.StatusPublished:
			published++
		case domain.StatusDraft:
			draft++
		}
		switch c.Price.Type {
		case domain.PriceFree:
			free++
		case domain.PricePaid:
			paid++
		}
		totalLessons += c.TotalLessons()
		if c.Rating != nil {
			ratingSum += c.Rating.Average
			rated++
		}
	}

	fmt.Println("\nOverall Statistics:")
	fmt.Printf("Total Courses: %d\n", len(courses))
	fmt.Printf("Published Courses: %d\n", published)
	fmt.Printf("Draft Courses: %d\n", draft)
	fmt.Printf("Free Courses: %d\n", free)
	fmt.Printf("Paid Courses: %d\n", paid)
	fmt.Printf("Total Lessons: %d\n", totalLessons)
	if rated > 0 {
		fmt.Printf("Average Rating: %.1f\n", ratingSum/float64(rated))
	}
}
