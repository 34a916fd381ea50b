package progress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

type fakeCatalog struct {
	courses map[string]*domain.Course
}

func (f *fakeCatalog) CourseByID(courseID string) (*domain.Course, bool) {
	c, ok := f.courses[courseID]
	return c, ok
}

type fakeContent struct {
	modules map[string][]*domain.ContentDocument
	lessons map[string][]*domain.ContentDocument
	fail    bool
}

func (f *fakeContent) CourseModules(ctx context.Context, courseID string) ([]*domain.ContentDocument, error) {
	if f.fail {
		return nil, errors.New("content store down")
	}
	return f.modules[courseID], nil
}

func (f *fakeContent) CourseLessons(ctx context.Context, courseID, moduleID string) ([]*domain.ContentDocument, error) {
	if f.fail {
		return nil, errors.New("content store down")
	}
	if moduleID == "" {
		return f.lessons[courseID], nil
	}
	var out []*domain.ContentDocument
	for _, doc := range f.lessons[courseID] {
		if doc.ModuleID == moduleID {
			out = append(out, doc)
		}
	}
	return out, nil
}

type fakeSnapshotStore struct {
	saved   int
	last    *domain.Snapshot
	loadDoc *domain.Snapshot
	failOn  bool
}

func (f *fakeSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	if f.failOn {
		return nil, errors.New("store down")
	}
	return f.loadDoc, nil
}

func (f *fakeSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if f.failOn {
		return errors.New("store down")
	}
	f.saved++
	f.last = snapshot
	return nil
}

// fixture builds a course with the given lesson counts per module. Module
// ids are m1, m2, ...; lesson ids l1, l2, ... within each module.
func fixture(courseID string, lessonsPerModule ...int) (*domain.Course, *fakeContent) {
	course := &domain.Course{
		ID:     courseID,
		Status: domain.StatusPublished,
	}
	fc := &fakeContent{
		modules: map[string][]*domain.ContentDocument{},
		lessons: map[string][]*domain.ContentDocument{},
	}
	for m, count := range lessonsPerModule {
		moduleID := "m" + string(rune('1'+m))
		module := domain.ModuleMetadata{ID: moduleID, Number: m + 1, EstimatedMinutes: count * 30}
		fc.modules[courseID] = append(fc.modules[courseID], &domain.ContentDocument{
			CourseID: courseID,
			Kind:     domain.DocKindModule,
			ModuleID: moduleID,
			Number:   m + 1,
		})
		for l := 0; l < count; l++ {
			lessonID := "l" + string(rune('1'+l))
			module.Lessons = append(module.Lessons, domain.LessonMetadata{
				ID:               lessonID,
				Number:           l + 1,
				EstimatedMinutes: 30,
				Slug:             lessonID,
			})
			fc.lessons[courseID] = append(fc.lessons[courseID], &domain.ContentDocument{
				CourseID:         courseID,
				Kind:             domain.DocKindLesson,
				ModuleID:         moduleID,
				Slug:             lessonID,
				Number:           l + 1,
				EstimatedMinutes: 30,
			})
		}
		course.Modules = append(course.Modules, module)
	}
	return course, fc
}

func newTestTracker(t *testing.T, lessonsPerModule ...int) (*Tracker, *fakeSnapshotStore) {
	t.Helper()
	course, fc := fixture("c1", lessonsPerModule...)
	store := &fakeSnapshotStore{}
	tr := NewTracker(&fakeCatalog{courses: map[string]*domain.Course{"c1": course}}, fc, store, logger.Nop())
	return tr, store
}

func TestMarkLessonCompleteEndToEnd(t *testing.T) {
	tr, store := newTestTracker(t, 2)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{TimeSpent: 20})

	mp := tr.ModuleProgress("c1", "m1")
	if mp == nil || mp.CompletionPercentage != 50 {
		t.Fatalf("expected module at 50%%, got %+v", mp)
	}
	if mp.CompletedLessons != 1 || mp.TotalLessons != 2 {
		t.Fatalf("unexpected module counts: %+v", mp)
	}
	if mp.StartedAt == nil || mp.CompletedAt != nil {
		t.Fatalf("expected started but not completed: %+v", mp)
	}

	cp := tr.CourseProgress("c1")
	if cp == nil || cp.CompletionPercentage != 50 {
		t.Fatalf("expected course at 50%%, got %+v", cp)
	}
	if cp.CompletedModules != 0 || cp.TotalTimeSpent != 20 {
		t.Fatalf("unexpected course aggregates: %+v", cp)
	}

	stats := tr.ProgressStats()
	if stats.User.TotalCoursesStarted != 1 || stats.User.TotalLessonsCompleted != 1 {
		t.Fatalf("unexpected user stats: %+v", stats.User)
	}
	if stats.CoursesInProgress != 1 {
		t.Fatalf("expected 1 course in progress, got %d", stats.CoursesInProgress)
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{})

	cp = tr.CourseProgress("c1")
	if cp.CompletionPercentage != 100 || cp.CompletedModules != 1 {
		t.Fatalf("expected completed course, got %+v", cp)
	}
	if cp.CompletedAt == nil {
		t.Fatalf("course CompletedAt missing")
	}
	stats = tr.ProgressStats()
	if stats.User.TotalCoursesCompleted != 1 {
		t.Fatalf("course completion not counted: %+v", stats.User)
	}
	if stats.CoursesInProgress != 0 {
		t.Fatalf("completed course still counted as in progress")
	}

	if store.saved == 0 {
		t.Fatalf("mutations must persist")
	}
}

func TestRepeatCompletionKeepsTimestampAndCounter(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	first := tr.LessonProgress("c1", "m1", "l1")

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	second := tr.LessonProgress("c1", "m1", "l1")

	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("CompletedAt must not move on repeat completion")
	}
	if second.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", second.Attempts)
	}
	if got := tr.ProgressStats().User.TotalLessonsCompleted; got != 1 {
		t.Fatalf("repeat completion must not recount, got %d", got)
	}
}

func TestPercentageRounding(t *testing.T) {
	tr, _ := newTestTracker(t, 3)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	if got := tr.ModuleProgress("c1", "m1").CompletionPercentage; got != 33 {
		t.Fatalf("1/3 must round to 33, got %d", got)
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{})
	if got := tr.ModuleProgress("c1", "m1").CompletionPercentage; got != 67 {
		t.Fatalf("2/3 must round to 67, got %d", got)
	}
}

func TestMarkLessonIncomplete(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	// Incomplete on a never-completed lesson is a no-op.
	tr.MarkLessonIncomplete(ctx, "c1", "m1", "l1")
	if got := tr.ProgressStats().User.TotalLessonsCompleted; got != 0 {
		t.Fatalf("counter moved on no-op, got %d", got)
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	tr.MarkLessonIncomplete(ctx, "c1", "m1", "l1")

	if tr.IsLessonCompleted("c1", "m1", "l1") {
		t.Fatalf("lesson still completed after incomplete")
	}
	if got := tr.ModuleProgress("c1", "m1").CompletionPercentage; got != 0 {
		t.Fatalf("module percentage must drop to 0, got %d", got)
	}
	stats := tr.ProgressStats()
	if stats.User.TotalLessonsCompleted != 0 {
		t.Fatalf("counter must floor at 0, got %d", stats.User.TotalLessonsCompleted)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	tr, _ := newTestTracker(t, 1, 1, 1, 1)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	current := day1
	tr.now = func() time.Time { return current }

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	if got := tr.ProgressStats().User.CurrentStreak; got != 1 {
		t.Fatalf("day 1 streak = %d, want 1", got)
	}

	// Same day again: no change.
	current = day1.Add(4 * time.Hour)
	tr.MarkLessonComplete(ctx, "c1", "m2", "l1", CompleteOptions{})
	if got := tr.ProgressStats().User.CurrentStreak; got != 1 {
		t.Fatalf("same-day streak = %d, want 1", got)
	}

	// Next day: continue.
	current = day1.AddDate(0, 0, 1)
	tr.MarkLessonComplete(ctx, "c1", "m3", "l1", CompleteOptions{})
	if got := tr.ProgressStats().User.CurrentStreak; got != 2 {
		t.Fatalf("day 2 streak = %d, want 2", got)
	}

	// Skip a day: reset to 1, longest keeps 2.
	current = day1.AddDate(0, 0, 3)
	tr.MarkLessonComplete(ctx, "c1", "m4", "l1", CompleteOptions{})
	stats := tr.ProgressStats()
	if stats.User.CurrentStreak != 1 {
		t.Fatalf("post-gap streak = %d, want 1", stats.User.CurrentStreak)
	}
	if stats.User.LongestStreak != 2 {
		t.Fatalf("longest streak = %d, want 2", stats.User.LongestStreak)
	}
}

func TestAverageScore(t *testing.T) {
	tr, _ := newTestTracker(t, 3)
	ctx := context.Background()

	s80, s90 := 80, 90
	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{Score: &s80})
	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{Score: &s90})
	tr.MarkLessonComplete(ctx, "c1", "m1", "l3", CompleteOptions{})

	cp := tr.CourseProgress("c1")
	if cp.AverageScore == nil || *cp.AverageScore != 85 {
		t.Fatalf("expected average 85, got %v", cp.AverageScore)
	}
}

func TestEstimatedTimeRemaining(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	mp := tr.ModuleProgress("c1", "m1")
	// 1 remaining lesson at 30 minutes each.
	if mp.EstimatedTimeRemaining != 30 {
		t.Fatalf("expected 30 minutes remaining, got %d", mp.EstimatedTimeRemaining)
	}
}

func TestNextLesson(t *testing.T) {
	tr, _ := newTestTracker(t, 2, 1)
	ctx := context.Background()

	moduleID, lessonID, ok := tr.NextLesson("c1")
	if !ok || moduleID != "m1" || lessonID != "l1" {
		t.Fatalf("fresh course next = %s.%s ok=%v", moduleID, lessonID, ok)
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	moduleID, lessonID, _ = tr.NextLesson("c1")
	if moduleID != "m1" || lessonID != "l2" {
		t.Fatalf("next = %s.%s, want m1.l2", moduleID, lessonID)
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{})
	moduleID, lessonID, _ = tr.NextLesson("c1")
	if moduleID != "m2" || lessonID != "l1" {
		t.Fatalf("next = %s.%s, want m2.l1", moduleID, lessonID)
	}

	tr.MarkLessonComplete(ctx, "c1", "m2", "l1", CompleteOptions{})
	if _, _, ok := tr.NextLesson("c1"); ok {
		t.Fatalf("completed course must have no next lesson")
	}

	if _, _, ok := tr.NextLesson("ghost"); ok {
		t.Fatalf("unknown course must have no next lesson")
	}
}

func TestBookmarksAndNotes(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	if on := tr.ToggleLessonBookmark(ctx, "c1", "m1", "l2"); !on {
		t.Fatalf("first toggle must bookmark")
	}
	tr.AddLessonNotes(ctx, "c1", "m1", "l2", "revisit the composition API part")

	lp := tr.LessonProgress("c1", "m1", "l2")
	if lp == nil || !lp.Bookmarked || lp.Notes == "" {
		t.Fatalf("bookmark or notes missing: %+v", lp)
	}
	if lp.Completed {
		t.Fatalf("bookmarking must not complete the lesson")
	}

	marks := tr.BookmarkedLessons()
	if len(marks) != 1 || marks[0].LessonID != "l2" || marks[0].ModuleID != "m1" {
		t.Fatalf("unexpected bookmarks: %+v", marks)
	}

	if on := tr.ToggleLessonBookmark(ctx, "c1", "m1", "l2"); on {
		t.Fatalf("second toggle must clear the bookmark")
	}
	if len(tr.BookmarkedLessons()) != 0 {
		t.Fatalf("bookmark not cleared")
	}
}

func TestUpdateCurrentLesson(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	tr.UpdateCurrentLesson(ctx, "c1", "m1", "l2")

	cp := tr.CourseProgress("c1")
	if cp == nil || cp.CurrentLesson != "m1.l2" {
		t.Fatalf("current lesson not stamped: %+v", cp)
	}
	if cp.LastAccessedAt == nil || cp.StartedAt == nil {
		t.Fatalf("timestamps missing: %+v", cp)
	}
	if cp.CompletionPercentage != 0 {
		t.Fatalf("navigation must not complete anything")
	}
}

func TestResetCourseProgress(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{})

	stats := tr.ProgressStats()
	if stats.User.TotalCoursesStarted != 1 || stats.User.TotalCoursesCompleted != 1 {
		t.Fatalf("precondition failed: %+v", stats.User)
	}

	tr.ResetCourseProgress(ctx, "c1")

	if tr.CourseProgress("c1") != nil || tr.ModuleProgress("c1", "m1") != nil {
		t.Fatalf("course records survived reset")
	}
	if tr.LessonProgress("c1", "m1", "l1") != nil {
		t.Fatalf("lesson records survived reset")
	}
	stats = tr.ProgressStats()
	if stats.User.TotalCoursesStarted != 0 || stats.User.TotalCoursesCompleted != 0 {
		t.Fatalf("counters not decremented: %+v", stats.User)
	}

	// A second reset of the same course must not drive counters negative.
	tr.ResetCourseProgress(ctx, "c1")
	stats = tr.ProgressStats()
	if stats.User.TotalCoursesStarted != 0 || stats.User.TotalCoursesCompleted != 0 {
		t.Fatalf("double reset moved counters: %+v", stats.User)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{TimeSpent: 10})
	tr.ToggleLessonBookmark(ctx, "c1", "m1", "l2")

	before := tr.Export()
	tr.Import(ctx, tr.Export())
	after := tr.Export()

	rawBefore, _ := json.Marshal(before)
	rawAfter, _ := json.Marshal(after)
	if string(rawBefore) != string(rawAfter) {
		t.Fatalf("Import(Export()) changed state:\nbefore: %s\nafter:  %s", rawBefore, rawAfter)
	}

	// Export must be a deep copy.
	before.Lessons["c1.m1.l1"].Completed = false
	if !tr.IsLessonCompleted("c1", "m1", "l1") {
		t.Fatalf("mutating an export leaked into the tracker")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	course, fc := fixture("c1", 2)
	store := &fakeSnapshotStore{
		loadDoc: &domain.Snapshot{
			Lessons: map[string]*domain.LessonProgress{
				"c1.m1.l1": {Completed: true},
			},
		},
	}
	tr := NewTracker(&fakeCatalog{courses: map[string]*domain.Course{"c1": course}}, fc, store, logger.Nop())
	tr.Load(context.Background())

	if !tr.IsLessonCompleted("c1", "m1", "l1") {
		t.Fatalf("persisted lesson lost on load")
	}
	// Absent sections keep their defaults.
	if settings := tr.Settings(); !settings.TrackTimeSpent || !settings.ShowProgressBar {
		t.Fatalf("defaults lost on partial load: %+v", settings)
	}
	stats := tr.ProgressStats()
	if stats.User.StartedCourses == nil {
		t.Fatalf("membership sets not initialized after load")
	}
}

func TestCollaboratorFailuresAreSwallowed(t *testing.T) {
	course, fc := fixture("c1", 2)
	fc.fail = true
	store := &fakeSnapshotStore{failOn: true}
	tr := NewTracker(&fakeCatalog{courses: map[string]*domain.Course{"c1": course}}, fc, store, logger.Nop())

	tr.Load(context.Background())
	tr.MarkLessonComplete(context.Background(), "c1", "m1", "l1", CompleteOptions{})

	// The lesson record itself still lands; aggregation is skipped.
	if !tr.IsLessonCompleted("c1", "m1", "l1") {
		t.Fatalf("lesson completion lost on collaborator failure")
	}
	if tr.ModuleProgress("c1", "m1") != nil {
		t.Fatalf("aggregate invented despite failing content store")
	}
}

func TestModuleProgressPercentageFallback(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	// No cached aggregate yet: computed on the fly.
	if got := tr.ModuleProgressPercentage(ctx, "c1", "m1"); got != 0 {
		t.Fatalf("fresh module percentage = %d, want 0", got)
	}
	if tr.ModuleProgress("c1", "m1") == nil {
		t.Fatalf("fallback must cache the aggregate")
	}
}

func TestMarkCourseCompletedForcesState(t *testing.T) {
	tr, _ := newTestTracker(t, 2)
	ctx := context.Background()

	// No-op without any progress record.
	tr.MarkCourseCompleted(ctx, "c1")
	if tr.IsCourseCompleted("c1") {
		t.Fatalf("completion invented without progress")
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	tr.MarkCourseCompleted(ctx, "c1")

	if !tr.IsCourseCompleted("c1") {
		t.Fatalf("course not completed")
	}
	if got := tr.CourseProgressPercentage("c1"); got != 100 {
		t.Fatalf("forced completion percentage = %d", got)
	}
	if got := tr.ProgressStats().User.TotalCoursesCompleted; got != 1 {
		t.Fatalf("forced completion not counted, got %d", got)
	}
}

func TestBoundsInvariant(t *testing.T) {
	tr, _ := newTestTracker(t, 3)
	ctx := context.Background()

	check := func() {
		t.Helper()
		if mp := tr.ModuleProgress("c1", "m1"); mp != nil {
			if mp.CompletionPercentage < 0 || mp.CompletionPercentage > 100 {
				t.Fatalf("module percentage out of bounds: %d", mp.CompletionPercentage)
			}
			if mp.CompletedLessons > mp.TotalLessons {
				t.Fatalf("completed exceeds total: %+v", mp)
			}
		}
		if cp := tr.CourseProgress("c1"); cp != nil {
			if cp.CompletionPercentage < 0 || cp.CompletionPercentage > 100 {
				t.Fatalf("course percentage out of bounds: %d", cp.CompletionPercentage)
			}
		}
	}

	tr.MarkLessonComplete(ctx, "c1", "m1", "l1", CompleteOptions{})
	check()
	tr.MarkLessonComplete(ctx, "c1", "m1", "l2", CompleteOptions{})
	check()
	tr.MarkLessonComplete(ctx, "c1", "m1", "l3", CompleteOptions{})
	check()
	tr.MarkLessonIncomplete(ctx, "c1", "m1", "l2")
	check()
	tr.MarkLessonIncomplete(ctx, "c1", "m1", "l2")
	check()
}
