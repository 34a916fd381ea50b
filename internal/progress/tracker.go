package progress

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

const defaultLessonMinutes = 15

// CatalogReader is the slice of the course registry the tracker needs for
// catalog-order walks.
type CatalogReader interface {
	CourseByID(courseID string) (*domain.Course, bool)
}

// ContentStore supplies the ordered document lists the aggregation recounts
// from. An empty list means nothing to aggregate, not an error.
type ContentStore interface {
	CourseModules(ctx context.Context, courseID string) ([]*domain.ContentDocument, error)
	CourseLessons(ctx context.Context, courseID, moduleID string) ([]*domain.ContentDocument, error)
}

// SnapshotStore persists the whole progress snapshot as one document.
// Load returns (nil, nil) when nothing has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

// CompleteOptions carries the optional fields of a lesson completion.
type CompleteOptions struct {
	TimeSpent int
	Score     *int
	UserID    string
}

// BookmarkedLesson is one bookmark with its reconstructed id triple.
type BookmarkedLesson struct {
	CourseID string                `json:"courseId"`
	ModuleID string                `json:"moduleId"`
	LessonID string                `json:"lessonId"`
	Progress *domain.LessonProgress `json:"progress"`
}

// Stats is the dashboard aggregate.
type Stats struct {
	User              domain.UserStats `json:"user"`
	CoursesInProgress int             `json:"coursesInProgress"`
}

// Tracker owns the progress snapshot for one session. Every mutation runs
// under one mutex and persists best-effort: collaborator failures are
// logged, never returned, and the last known aggregates are kept.
type Tracker struct {
	mu      sync.Mutex
	data    *domain.Snapshot
	catalog CatalogReader
	content ContentStore
	store   SnapshotStore
	log     *logger.Logger
	now     func() time.Time
}

func NewTracker(catalog CatalogReader, content ContentStore, store SnapshotStore, baseLog *logger.Logger) *Tracker {
	return &Tracker{
		data:    domain.NewSnapshot(),
		catalog: catalog,
		content: content,
		store:   store,
		log:     baseLog.With("service", "ProgressTracker"),
		now:     time.Now,
	}
}

// Load rehydrates the snapshot, shallow-merging the persisted document over
// defaults. A missing document or a load failure leaves the defaults.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	saved, err := t.store.Load(ctx)
	if err != nil {
		t.log.Error("Failed to load progress, starting fresh", "error", err)
		return
	}
	if saved == nil {
		return
	}
	base := domain.NewSnapshot()
	base.Merge(saved)
	t.data = base
}

func (t *Tracker) persist(ctx context.Context) {
	if err := t.store.Save(ctx, t.data); err != nil {
		t.log.Error("Failed to save progress", "error", err)
	}
}

// Save flushes the snapshot to the store.
func (t *Tracker) Save(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.persist(ctx)
}

func (t *Tracker) lessonAt(key string) *domain.LessonProgress {
	lp, ok := t.data.Lessons[key]
	if !ok {
		lp = &domain.LessonProgress{}
		t.data.Lessons[key] = lp
	}
	return lp
}

// MarkLessonComplete records a completion and cascades the module, course,
// and streak aggregates. Repeat completions keep the original CompletedAt
// and only grow Attempts; the user-level completion counter moves on the
// first transition only.
func (t *Tracker) MarkLessonComplete(ctx context.Context, courseID, moduleID, lessonID string, opts CompleteOptions) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	lp := t.lessonAt(domain.LessonKey(courseID, moduleID, lessonID))

	first := !lp.Completed
	lp.Completed = true
	if lp.CompletedAt == nil {
		lp.CompletedAt = &now
	}
	if opts.TimeSpent > 0 {
		lp.TimeSpent += opts.TimeSpent
	}
	if opts.Score != nil {
		lp.Score = opts.Score
	}
	lp.Attempts++

	if first {
		t.data.User.TotalLessonsCompleted++
	}
	if opts.TimeSpent > 0 {
		t.data.User.TotalTimeSpent += opts.TimeSpent
	}
	prevActive := t.data.User.LastActiveDate
	t.data.User.LastActiveDate = &now

	t.recomputeModule(ctx, courseID, moduleID, now)
	t.recomputeCourse(ctx, courseID, opts.UserID, now)
	t.updateStreak(prevActive, now)
	if cp := t.data.Courses[courseID]; cp != nil {
		cp.Streak = t.data.User.CurrentStreak
	}

	t.persist(ctx)
}

// MarkLessonIncomplete reverses a completion. No-op on a lesson that was
// never completed; the streak is left alone.
func (t *Tracker) MarkLessonIncomplete(ctx context.Context, courseID, moduleID, lessonID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp, ok := t.data.Lessons[domain.LessonKey(courseID, moduleID, lessonID)]
	if !ok || !lp.Completed {
		return
	}
	lp.Completed = false
	lp.CompletedAt = nil
	if t.data.User.TotalLessonsCompleted > 0 {
		t.data.User.TotalLessonsCompleted--
	}

	now := t.now()
	t.recomputeModule(ctx, courseID, moduleID, now)
	t.recomputeCourse(ctx, courseID, "", now)

	t.persist(ctx)
}

// LessonProgress returns a copy, or nil when the lesson was never touched.
func (t *Tracker) LessonProgress(courseID, moduleID, lessonID string) *domain.LessonProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp, ok := t.data.Lessons[domain.LessonKey(courseID, moduleID, lessonID)]
	if !ok {
		return nil
	}
	out := *lp
	return &out
}

func (t *Tracker) IsLessonCompleted(courseID, moduleID, lessonID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	lp, ok := t.data.Lessons[domain.LessonKey(courseID, moduleID, lessonID)]
	return ok && lp.Completed
}

// UpdateCurrentLesson stamps the navigation position, lazily creating the
// course record so the position survives before any completion.
func (t *Tracker) UpdateCurrentLesson(ctx context.Context, courseID, moduleID, lessonID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cp, ok := t.data.Courses[courseID]
	if !ok {
		cp = &domain.CourseProgress{CourseID: courseID, StartedAt: &now}
		t.data.Courses[courseID] = cp
	}
	cp.CurrentLesson = moduleID + "." + lessonID
	cp.LastAccessedAt = &now

	t.persist(ctx)
}

// ModuleProgress returns a copy of the cached module aggregate.
func (t *Tracker) ModuleProgress(courseID, moduleID string) *domain.ModuleProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	mp, ok := t.data.Modules[domain.ModuleKey(courseID, moduleID)]
	if !ok {
		return nil
	}
	out := *mp
	return &out
}

// ModuleProgressPercentage recomputes on the fly when no aggregate is
// cached yet.
func (t *Tracker) ModuleProgressPercentage(ctx context.Context, courseID, moduleID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mp, ok := t.data.Modules[domain.ModuleKey(courseID, moduleID)]; ok {
		return mp.CompletionPercentage
	}
	t.recomputeModule(ctx, courseID, moduleID, t.now())
	if mp, ok := t.data.Modules[domain.ModuleKey(courseID, moduleID)]; ok {
		return mp.CompletionPercentage
	}
	return 0
}

func (t *Tracker) CourseProgress(courseID string) *domain.CourseProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	cp, ok := t.data.Courses[courseID]
	if !ok {
		return nil
	}
	out := *cp
	return &out
}

func (t *Tracker) CourseProgressPercentage(courseID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cp, ok := t.data.Courses[courseID]; ok {
		return cp.CompletionPercentage
	}
	return 0
}

// NextLesson walks the course in catalog order and returns the first
// incomplete lesson. ok is false for an unknown or fully completed course.
func (t *Tracker) NextLesson(courseID string) (moduleID, lessonID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	course, found := t.catalog.CourseByID(courseID)
	if !found {
		return "", "", false
	}
	for i := range course.Modules {
		module := &course.Modules[i]
		for j := range module.Lessons {
			lesson := &module.Lessons[j]
			key := domain.LessonKey(courseID, module.ID, lesson.ID)
			if lp, exists := t.data.Lessons[key]; !exists || !lp.Completed {
				return module.ID, lesson.ID, true
			}
		}
	}
	return "", "", false
}

func (t *Tracker) ToggleLessonBookmark(ctx context.Context, courseID, moduleID, lessonID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp := t.lessonAt(domain.LessonKey(courseID, moduleID, lessonID))
	lp.Bookmarked = !lp.Bookmarked
	t.persist(ctx)
	return lp.Bookmarked
}

func (t *Tracker) AddLessonNotes(ctx context.Context, courseID, moduleID, lessonID, notes string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lp := t.lessonAt(domain.LessonKey(courseID, moduleID, lessonID))
	lp.Notes = notes
	t.persist(ctx)
}

func (t *Tracker) BookmarkedLessons() []BookmarkedLesson {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []BookmarkedLesson
	for key, lp := range t.data.Lessons {
		if !lp.Bookmarked {
			continue
		}
		courseID, moduleID, lessonID, ok := domain.SplitLessonKey(key)
		if !ok {
			continue
		}
		progress := *lp
		out = append(out, BookmarkedLesson{
			CourseID: courseID,
			ModuleID: moduleID,
			LessonID: lessonID,
			Progress: &progress,
		})
	}
	return out
}

// MarkCourseCompleted force-completes the course aggregate. No-op for a
// course with no progress record.
func (t *Tracker) MarkCourseCompleted(ctx context.Context, courseID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cp, ok := t.data.Courses[courseID]
	if !ok {
		return
	}
	now := t.now()
	if cp.CompletedAt == nil {
		cp.CompletedAt = &now
	}
	cp.CompletionPercentage = 100
	if !t.data.User.CompletedCourses[courseID] {
		t.data.User.CompletedCourses[courseID] = true
		t.data.User.TotalCoursesCompleted++
	}
	t.persist(ctx)
}

func (t *Tracker) IsCourseCompleted(courseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp, ok := t.data.Courses[courseID]
	return ok && cp.CompletedAt != nil
}

// ProgressStats snapshots the user stats plus the count of courses sitting
// strictly between 0 and 100 percent.
func (t *Tracker) ProgressStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	inProgress := 0
	for _, cp := range t.data.Courses {
		if cp.CompletionPercentage > 0 && cp.CompletionPercentage < 100 {
			inProgress++
		}
	}
	return Stats{User: *t.data.User, CoursesInProgress: inProgress}
}

// ResetCourseProgress removes every record of the course. The user-level
// counters only move when the membership sets show the course was actually
// counted in.
func (t *Tracker) ResetCourseProgress(ctx context.Context, courseID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := courseID + "."
	for key := range t.data.Lessons {
		if strings.HasPrefix(key, prefix) {
			delete(t.data.Lessons, key)
		}
	}
	for key := range t.data.Modules {
		if strings.HasPrefix(key, prefix) {
			delete(t.data.Modules, key)
		}
	}
	delete(t.data.Courses, courseID)

	if t.data.User.StartedCourses[courseID] {
		delete(t.data.User.StartedCourses, courseID)
		if t.data.User.TotalCoursesStarted > 0 {
			t.data.User.TotalCoursesStarted--
		}
	}
	if t.data.User.CompletedCourses[courseID] {
		delete(t.data.User.CompletedCourses, courseID)
		if t.data.User.TotalCoursesCompleted > 0 {
			t.data.User.TotalCoursesCompleted--
		}
	}

	t.persist(ctx)
}

// Export deep-copies the snapshot.
func (t *Tracker) Export() *domain.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.Clone()
}

// Import shallow-merges the given snapshot over the current one and
// persists the result.
func (t *Tracker) Import(ctx context.Context, in *domain.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Merge(in)
	t.persist(ctx)
}

func (t *Tracker) Settings() domain.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.data.Settings
}

func (t *Tracker) UpdateSettings(ctx context.Context, settings domain.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := settings
	t.data.Settings = &s
	t.persist(ctx)
}

// recomputeModule recounts the module aggregate from the content store.
// Callers hold the mutex. Fetch failures keep the last known aggregate.
func (t *Tracker) recomputeModule(ctx context.Context, courseID, moduleID string, now time.Time) {
	lessons, err := t.content.CourseLessons(ctx, courseID, moduleID)
	if err != nil {
		t.log.Error("Failed to list module lessons", "courseId", courseID, "moduleId", moduleID, "error", err)
		return
	}
	if len(lessons) == 0 {
		return
	}

	completed := 0
	for _, lesson := range lessons {
		key := domain.LessonKey(courseID, moduleID, lesson.Slug)
		if lp, ok := t.data.Lessons[key]; ok && lp.Completed {
			completed++
		}
	}
	percentage := int(math.Round(float64(completed) / float64(len(lessons)) * 100))

	moduleKey := domain.ModuleKey(courseID, moduleID)
	prev := t.data.Modules[moduleKey]

	mp := &domain.ModuleProgress{
		ModuleID:               moduleID,
		CourseID:               courseID,
		TotalLessons:           len(lessons),
		CompletedLessons:       completed,
		CompletionPercentage:   percentage,
		EstimatedTimeRemaining: estimatedTimeRemaining(lessons, completed),
	}
	if prev != nil && prev.StartedAt != nil {
		mp.StartedAt = prev.StartedAt
	} else if completed > 0 {
		mp.StartedAt = &now
	}
	if percentage == 100 {
		if prev != nil && prev.CompletedAt != nil {
			mp.CompletedAt = prev.CompletedAt
		} else {
			mp.CompletedAt = &now
		}
	}
	t.data.Modules[moduleKey] = mp
}

// recomputeCourse recounts the course aggregate. The module and lesson
// lists are fetched concurrently. Callers hold the mutex.
func (t *Tracker) recomputeCourse(ctx context.Context, courseID, userID string, now time.Time) {
	var (
		modules []*domain.ContentDocument
		lessons []*domain.ContentDocument
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		modules, err = t.content.CourseModules(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		lessons, err = t.content.CourseLessons(gctx, courseID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		t.log.Error("Failed to list course content", "courseId", courseID, "error", err)
		return
	}
	if len(lessons) == 0 {
		return
	}

	completedModules := 0
	for _, module := range modules {
		if mp, ok := t.data.Modules[domain.ModuleKey(courseID, module.ModuleID)]; ok && mp.CompletionPercentage == 100 {
			completedModules++
		}
	}

	completed := 0
	totalTime := 0
	totalScore := 0
	scored := 0
	for _, lesson := range lessons {
		key := domain.LessonKey(courseID, lesson.ModuleID, lesson.Slug)
		lp, ok := t.data.Lessons[key]
		if !ok || !lp.Completed {
			continue
		}
		completed++
		totalTime += lp.TimeSpent
		if lp.Score != nil {
			totalScore += *lp.Score
			scored++
		}
	}
	percentage := int(math.Round(float64(completed) / float64(len(lessons)) * 100))

	prev := t.data.Courses[courseID]
	cp := &domain.CourseProgress{
		CourseID:             courseID,
		TotalModules:         len(modules),
		CompletedModules:     completedModules,
		TotalLessons:         len(lessons),
		CompletedLessons:     completed,
		CompletionPercentage: percentage,
		LastAccessedAt:       &now,
		TotalTimeSpent:       totalTime,
		Streak:               t.data.User.CurrentStreak,
	}
	if scored > 0 {
		avg := int(math.Round(float64(totalScore) / float64(scored)))
		cp.AverageScore = &avg
	}
	if prev != nil {
		cp.CurrentLesson = prev.CurrentLesson
		cp.UserID = prev.UserID
	}
	if userID != "" {
		cp.UserID = userID
	}
	if prev != nil && prev.StartedAt != nil {
		cp.StartedAt = prev.StartedAt
	} else if completed > 0 {
		cp.StartedAt = &now
	}
	if percentage == 100 {
		if prev != nil && prev.CompletedAt != nil {
			cp.CompletedAt = prev.CompletedAt
		} else {
			cp.CompletedAt = &now
		}
	}
	t.data.Courses[courseID] = cp

	if completed > 0 && !t.data.User.StartedCourses[courseID] {
		t.data.User.StartedCourses[courseID] = true
		t.data.User.TotalCoursesStarted++
	}
	if percentage == 100 && !t.data.User.CompletedCourses[courseID] {
		t.data.User.CompletedCourses[courseID] = true
		t.data.User.TotalCoursesCompleted++
	}
}

// updateStreak applies day granularity against the activity date that was
// current before this mutation stamped it. Callers hold the mutex.
func (t *Tracker) updateStreak(prevActive *time.Time, now time.Time) {
	if prevActive != nil && sameDay(*prevActive, now) {
		return
	}
	if prevActive != nil && sameDay(*prevActive, now.AddDate(0, 0, -1)) {
		t.data.User.CurrentStreak++
	} else {
		t.data.User.CurrentStreak = 1
	}
	if t.data.User.CurrentStreak > t.data.User.LongestStreak {
		t.data.User.LongestStreak = t.data.User.CurrentStreak
	}
}

func estimatedTimeRemaining(lessons []*domain.ContentDocument, completed int) int {
	if len(lessons) == 0 {
		return 0
	}
	total := 0
	for _, lesson := range lessons {
		minutes := lesson.EstimatedMinutes
		if minutes == 0 {
			minutes = defaultLessonMinutes
		}
		total += minutes
	}
	average := float64(total) / float64(len(lessons))
	remaining := len(lessons) - completed
	return int(math.Round(float64(remaining) * average))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
