package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "search:"

// CachedSearcher memoises normalised results in Redis. Cache failures are
// logged and the call falls through to the wrapped Searcher.
type CachedSearcher struct {
	next Searcher
	rdb  *redis.Client
	ttl  time.Duration
	log  logrus.FieldLogger
}

func NewCachedSearcher(next Searcher, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedSearcher {
	return &CachedSearcher{next: next, rdb: rdb, ttl: ttl, log: log}
}

func cacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

func (s *CachedSearcher) Search(ctx context.Context, query string) ([]Image, error) {
	key := cacheKey(query)

	cached, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var images []Image
		if jsonErr := json.Unmarshal(cached, &images); jsonErr == nil {
			return images, nil
		}
		s.log.WithField("key", key).Warn("discarding undecodable search cache entry")
	case !errors.Is(err, redis.Nil):
		s.log.WithError(err).Warn("search cache read failed")
	}

	images, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(images)
	if err == nil {
		if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.log.WithError(err).Warn("search cache write failed")
		}
	}

	return images, nil
}
