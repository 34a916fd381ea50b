package content

import (
	"context"

	"github.com/learnloop/learnloop-backend/internal/domain"
)

// LocaleBound pins a Store to one locale for callers that aggregate over
// content without caring about translations.
type LocaleBound struct {
	store  Store
	locale string
}

func NewLocaleBound(store Store, locale string) *LocaleBound {
	return &LocaleBound{store: store, locale: locale}
}

func (b *LocaleBound) CourseModules(ctx context.Context, courseID string) ([]*domain.ContentDocument, error) {
	return b.store.CourseModules(ctx, courseID, b.locale)
}

func (b *LocaleBound) CourseLessons(ctx context.Context, courseID, moduleID string) ([]*domain.ContentDocument, error) {
	return b.store.CourseLessons(ctx, courseID, b.locale, moduleID)
}
