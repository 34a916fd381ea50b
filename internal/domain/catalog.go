package domain

import "time"

// Course lifecycle states as shipped in the static catalog.
const (
	StatusDraft      = "draft"
	StatusPublished  = "published"
	StatusArchived   = "archived"
	StatusComingSoon = "coming-soon"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	PriceFree    = "free"
	PricePaid    = "paid"
	PricePremium = "premium"
)

// LocalizedText maps a locale code ("en", "ar") to a translated string.
type LocalizedText map[string]string

// Get returns the text for the given locale, falling back to English.
func (t LocalizedText) Get(locale string) string {
	if v, ok := t[locale]; ok && v != "" {
		return v
	}
	return t["en"]
}

type LessonMetadata struct {
	ID               string        `yaml:"id" json:"id"`
	Title            LocalizedText `yaml:"title" json:"title"`
	Description      LocalizedText `yaml:"description" json:"description"`
	Number           int           `yaml:"number" json:"number"`
	EstimatedMinutes int           `yaml:"estimatedMinutes" json:"estimatedMinutes"`
	HasExercise      bool          `yaml:"hasExercise" json:"hasExercise"`
	HasQuiz          bool          `yaml:"hasQuiz" json:"hasQuiz"`
	Slug             string        `yaml:"slug" json:"slug"`
}

type ModuleMetadata struct {
	ID               string           `yaml:"id" json:"id"`
	Title            LocalizedText    `yaml:"title" json:"title"`
	Description      LocalizedText    `yaml:"description" json:"description"`
	Number           int              `yaml:"number" json:"number"`
	EstimatedMinutes int              `yaml:"estimatedMinutes" json:"estimatedMinutes"`
	Lessons          []LessonMetadata `yaml:"lessons" json:"lessons"`
}

type SocialLinks struct {
	Twitter  string `yaml:"twitter,omitempty" json:"twitter,omitempty"`
	GitHub   string `yaml:"github,omitempty" json:"github,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
	Website  string `yaml:"website,omitempty" json:"website,omitempty"`
}

type InstructorInfo struct {
	Name   string        `yaml:"name" json:"name"`
	Bio    LocalizedText `yaml:"bio" json:"bio"`
	Avatar string        `yaml:"avatar" json:"avatar"`
	Social *SocialLinks  `yaml:"social,omitempty" json:"social,omitempty"`
}

type CoursePrice struct {
	Amount         float64  `yaml:"amount" json:"amount"`
	Currency       string   `yaml:"currency" json:"currency"`
	Type           string   `yaml:"type" json:"type"`
	OriginalAmount *float64 `yaml:"originalAmount,omitempty" json:"originalAmount,omitempty"`
}

type CourseRating struct {
	Average float64 `yaml:"average" json:"average"`
	Count   int     `yaml:"count" json:"count"`
}

type CourseTheme struct {
	PrimaryColor    string `yaml:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	AccentColor     string `yaml:"accentColor,omitempty" json:"accentColor,omitempty"`
	BackgroundImage string `yaml:"backgroundImage,omitempty" json:"backgroundImage,omitempty"`
}

type CourseFeatures struct {
	HasQuizzes      bool `yaml:"hasQuizzes" json:"hasQuizzes"`
	HasExercises    bool `yaml:"hasExercises" json:"hasExercises"`
	HasCertificates bool `yaml:"hasCertificates" json:"hasCertificates"`
	HasDownloads    bool `yaml:"hasDownloads" json:"hasDownloads"`
	HasVideoContent bool `yaml:"hasVideoContent" json:"hasVideoContent"`
	HasLiveSupport  bool `yaml:"hasLiveSupport" json:"hasLiveSupport"`
}

type CourseNavigationOptions struct {
	ShowProgressBar   bool `yaml:"showProgressBar" json:"showProgressBar"`
	EnableBookmarks   bool `yaml:"enableBookmarks" json:"enableBookmarks"`
	ShowEstimatedTime bool `yaml:"showEstimatedTime" json:"showEstimatedTime"`
	EnableNotes       bool `yaml:"enableNotes" json:"enableNotes"`
}

type CourseConfig struct {
	Theme      *CourseTheme             `yaml:"theme,omitempty" json:"theme,omitempty"`
	Features   *CourseFeatures          `yaml:"features,omitempty" json:"features,omitempty"`
	Navigation *CourseNavigationOptions `yaml:"navigation,omitempty" json:"navigation,omitempty"`
}

type Course struct {
	ID              string           `yaml:"id" json:"id"`
	Title           LocalizedText    `yaml:"title" json:"title"`
	Description     LocalizedText    `yaml:"description" json:"description"`
	Slug            string           `yaml:"slug" json:"slug"`
	Status          string           `yaml:"status" json:"status"`
	Difficulty      string           `yaml:"difficulty" json:"difficulty"`
	EstimatedHours  float64          `yaml:"estimatedHours" json:"estimatedHours"`
	Prerequisites   []string         `yaml:"prerequisites" json:"prerequisites"`
	Technologies    []string         `yaml:"technologies" json:"technologies"`
	Categories      []string         `yaml:"categories" json:"categories"`
	Instructor      InstructorInfo   `yaml:"instructor" json:"instructor"`
	Thumbnail       string           `yaml:"thumbnail" json:"thumbnail"`
	Price           CoursePrice      `yaml:"price" json:"price"`
	Modules         []ModuleMetadata `yaml:"modules" json:"modules"`
	CreatedAt       string           `yaml:"createdAt" json:"createdAt"`
	UpdatedAt       string           `yaml:"updatedAt" json:"updatedAt"`
	Config          *CourseConfig    `yaml:"config,omitempty" json:"config,omitempty"`
	Tags            []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
	Rating          *CourseRating    `yaml:"rating,omitempty" json:"rating,omitempty"`
	EnrollmentCount int              `yaml:"enrollmentCount,omitempty" json:"enrollmentCount,omitempty"`
}

// TotalLessons counts lessons across every module of the course.
func (c *Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// TotalMinutes sums the estimated minutes of every module.
func (c *Course) TotalMinutes() int {
	total := 0
	for _, m := range c.Modules {
		total += m.EstimatedMinutes
	}
	return total
}

// CreatedTime parses the catalog date field; zero time when unparseable.
func (c *Course) CreatedTime() time.Time {
	ts, err := time.Parse("2006-01-02", c.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// DifficultyRank orders difficulties beginner < intermediate < advanced.
func DifficultyRank(difficulty string) int {
	switch difficulty {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	default:
		return 0
	}
}

// CourseFilters combines with AND across dimensions and OR within any
// multi-valued dimension.
type CourseFilters struct {
	Difficulties []string `json:"difficulties,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	PriceTypes   []string `json:"priceTypes,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
	MinHours     *float64 `json:"minHours,omitempty"`
	MaxHours     *float64 `json:"maxHours,omitempty"`
}

type SortField string

const (
	SortByTitle      SortField = "title"
	SortByDifficulty SortField = "difficulty"
	SortByHours      SortField = "estimatedHours"
	SortByCreatedAt  SortField = "createdAt"
	SortByRating     SortField = "rating"
	SortByEnrollment SortField = "enrollmentCount"
)

type SortOptions struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

// Category and Tag describe the catalog-level metadata lists that back
// the course discovery UI.
type Category struct {
	ID          string        `yaml:"id" json:"id"`
	Title       LocalizedText `yaml:"title" json:"title"`
	Description LocalizedText `yaml:"description" json:"description"`
	Icon        string        `yaml:"icon" json:"icon"`
	Color       string        `yaml:"color" json:"color"`
}

type Tag struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

type DifficultyLevel struct {
	ID          string        `yaml:"id" json:"id"`
	Title       LocalizedText `yaml:"title" json:"title"`
	Description LocalizedText `yaml:"description" json:"description"`
	Color       string        `yaml:"color" json:"color"`
	Icon        string        `yaml:"icon" json:"icon"`
}
