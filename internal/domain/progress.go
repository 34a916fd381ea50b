package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// LessonProgress is the per-lesson record, keyed by
// "courseID.moduleID.lessonID" inside the snapshot.
type LessonProgress struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `json:"timeSpent,omitempty"` // minutes, cumulative
	Attempts    int        `json:"attempts,omitempty"`
	Score       *int       `json:"score,omitempty"` // 0..100
	Bookmarked  bool       `json:"bookmarked,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// ModuleProgress is a cached aggregate, recomputed from scratch every time a
// lesson in the module changes state.
type ModuleProgress struct {
	ModuleID               string     `json:"moduleId"`
	CourseID               string     `json:"courseId"`
	TotalLessons           int        `json:"totalLessons"`
	CompletedLessons       int        `json:"completedLessons"`
	CompletionPercentage   int        `json:"completionPercentage"`
	StartedAt              *time.Time `json:"startedAt,omitempty"`
	CompletedAt            *time.Time `json:"completedAt,omitempty"`
	EstimatedTimeRemaining int        `json:"estimatedTimeRemaining,omitempty"` // minutes
}

type CourseProgress struct {
	CourseID             string     `json:"courseId"`
	UserID               string     `json:"userId,omitempty"`
	TotalModules         int        `json:"totalModules"`
	CompletedModules     int        `json:"completedModules"`
	TotalLessons         int        `json:"totalLessons"`
	CompletedLessons     int        `json:"completedLessons"`
	CompletionPercentage int        `json:"completionPercentage"`
	StartedAt            *time.Time `json:"startedAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	LastAccessedAt       *time.Time `json:"lastAccessedAt,omitempty"`
	CurrentLesson        string     `json:"currentLesson,omitempty"` // "moduleID.lessonID"
	TotalTimeSpent       int        `json:"totalTimeSpent,omitempty"`
	AverageScore         *int       `json:"averageScore,omitempty"`
	Streak               int        `json:"streak,omitempty"`
}

// UserStats is the session-scoped singleton. StartedCourses and
// CompletedCourses track which course ids have been counted into the
// totals, so a course reset only decrements counters the course actually
// contributed to.
type UserStats struct {
	TotalCoursesStarted   int             `json:"totalCoursesStarted"`
	TotalCoursesCompleted int             `json:"totalCoursesCompleted"`
	TotalLessonsCompleted int             `json:"totalLessonsCompleted"`
	TotalTimeSpent        int             `json:"totalTimeSpent"`
	CurrentStreak         int             `json:"currentStreak"`
	LongestStreak         int             `json:"longestStreak"`
	LastActiveDate        *time.Time      `json:"lastActiveDate,omitempty"`
	JoinedAt              *time.Time      `json:"joinedAt,omitempty"`
	StartedCourses        map[string]bool `json:"startedCourses,omitempty"`
	CompletedCourses      map[string]bool `json:"completedCourses,omitempty"`
}

type Settings struct {
	TrackTimeSpent      bool `json:"trackTimeSpent"`
	ShowProgressBar     bool `json:"showProgressBar"`
	EnableNotifications bool `json:"enableNotifications"`
	AutoMarkComplete    bool `json:"autoMarkComplete"`
}

// Snapshot is the full serializable progress state. It is persisted as one
// JSON document under a fixed storage key and rehydrated at startup by
// shallow-merging over defaults: a section present in the stored document
// replaces the default wholesale, an absent section keeps the default.
type Snapshot struct {
	Lessons  map[string]*LessonProgress `json:"lessons"`
	Modules  map[string]*ModuleProgress `json:"modules"`
	Courses  map[string]*CourseProgress `json:"courses"`
	User     *UserStats                 `json:"user,omitempty"`
	Settings *Settings                  `json:"settings,omitempty"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Lessons: map[string]*LessonProgress{},
		Modules: map[string]*ModuleProgress{},
		Courses: map[string]*CourseProgress{},
		User: &UserStats{
			StartedCourses:   map[string]bool{},
			CompletedCourses: map[string]bool{},
		},
		Settings: &Settings{
			TrackTimeSpent:      true,
			ShowProgressBar:     true,
			EnableNotifications: true,
			AutoMarkComplete:    false,
		},
	}
}

// Merge shallow-merges in over s: every non-nil section of in replaces the
// corresponding section of s.
func (s *Snapshot) Merge(in *Snapshot) {
	if in == nil {
		return
	}
	if in.Lessons != nil {
		s.Lessons = in.Lessons
	}
	if in.Modules != nil {
		s.Modules = in.Modules
	}
	if in.Courses != nil {
		s.Courses = in.Courses
	}
	if in.User != nil {
		s.User = in.User
		if s.User.StartedCourses == nil {
			s.User.StartedCourses = map[string]bool{}
		}
		if s.User.CompletedCourses == nil {
			s.User.CompletedCourses = map[string]bool{}
		}
	}
	if in.Settings != nil {
		s.Settings = in.Settings
	}
}

// Clone deep-copies the snapshot through its JSON form.
func (s *Snapshot) Clone() *Snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		return NewSnapshot()
	}
	out := &Snapshot{}
	if err := json.Unmarshal(raw, out); err != nil {
		return NewSnapshot()
	}
	base := NewSnapshot()
	base.Merge(out)
	return base
}

func LessonKey(courseID, moduleID, lessonID string) string {
	return courseID + "." + moduleID + "." + lessonID
}

func ModuleKey(courseID, moduleID string) string {
	return courseID + "." + moduleID
}

// SplitLessonKey reconstructs the id triple from a snapshot lesson key.
func SplitLessonKey(key string) (courseID, moduleID, lessonID string, ok bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
