package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

// NewRedisClient connects using REDIS_ADDR. Returns an error when the
// variable is unset so the caller can fall back to the uncached store.
func NewRedisClient() (*goredis.Client, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// cachedStore is a read-through cache over a Store. Content only changes
// on re-seed, so a TTL bounds staleness. Redis failures are logged and the
// call falls through to the inner store.
type cachedStore struct {
	inner Store
	rdb   *goredis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedStore(inner Store, rdb *goredis.Client, ttl time.Duration, baseLog *logger.Logger) Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &cachedStore{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   baseLog.With("service", "ContentCache"),
	}
}

func (c *cachedStore) getDoc(ctx context.Context, key string, load func() (*domain.ContentDocument, error)) (*domain.ContentDocument, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var doc domain.ContentDocument
		if err := json.Unmarshal(raw, &doc); err == nil {
			return &doc, nil
		}
		c.log.Warn("Corrupt cache entry, reloading", "key", key)
	} else if err != goredis.Nil {
		c.log.Warn("Cache read failed", "key", key, "error", err)
	}

	doc, err := load()
	if err != nil || doc == nil {
		return doc, err
	}
	c.put(ctx, key, doc)
	return doc, nil
}

func (c *cachedStore) getDocs(ctx context.Context, key string, load func() ([]*domain.ContentDocument, error)) ([]*domain.ContentDocument, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var docs []*domain.ContentDocument
		if err := json.Unmarshal(raw, &docs); err == nil {
			return docs, nil
		}
		c.log.Warn("Corrupt cache entry, reloading", "key", key)
	} else if err != goredis.Nil {
		c.log.Warn("Cache read failed", "key", key, "error", err)
	}

	docs, err := load()
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, docs)
	return docs, nil
}

func (c *cachedStore) put(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (c *cachedStore) Course(ctx context.Context, courseID, locale string) (*domain.ContentDocument, error) {
	key := "content:" + domain.CoursePath(courseID, locale)
	return c.getDoc(ctx, key, func() (*domain.ContentDocument, error) {
		return c.inner.Course(ctx, courseID, locale)
	})
}

func (c *cachedStore) Module(ctx context.Context, courseID, locale, moduleID string) (*domain.ContentDocument, error) {
	key := "content:" + domain.ModulePath(courseID, locale, moduleID)
	return c.getDoc(ctx, key, func() (*domain.ContentDocument, error) {
		return c.inner.Module(ctx, courseID, locale, moduleID)
	})
}

func (c *cachedStore) Lesson(ctx context.Context, courseID, locale, moduleID, lessonSlug string) (*domain.ContentDocument, error) {
	key := "content:" + domain.LessonPath(courseID, locale, moduleID, lessonSlug)
	return c.getDoc(ctx, key, func() (*domain.ContentDocument, error) {
		return c.inner.Lesson(ctx, courseID, locale, moduleID, lessonSlug)
	})
}

func (c *cachedStore) CourseModules(ctx context.Context, courseID, locale string) ([]*domain.ContentDocument, error) {
	key := fmt.Sprintf("content:list:%s:%s:modules", courseID, locale)
	return c.getDocs(ctx, key, func() ([]*domain.ContentDocument, error) {
		return c.inner.CourseModules(ctx, courseID, locale)
	})
}

func (c *cachedStore) CourseLessons(ctx context.Context, courseID, locale, moduleID string) ([]*domain.ContentDocument, error) {
	key := fmt.Sprintf("content:list:%s:%s:lessons:%s", courseID, locale, moduleID)
	return c.getDocs(ctx, key, func() ([]*domain.ContentDocument, error) {
		return c.inner.CourseLessons(ctx, courseID, locale, moduleID)
	})
}

func (c *cachedStore) AllCourses(ctx context.Context, locale string) ([]*domain.ContentDocument, error) {
	key := "content:list:courses:" + locale
	return c.getDocs(ctx, key, func() ([]*domain.ContentDocument, error) {
		return c.inner.AllCourses(ctx, locale)
	})
}
