package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/diegood/peoplix/internal/planning/engine"
)

const keyPrefix = "peoplix:facts:"

// RedisFactsCache caches resolved calendar facts in Redis. A circuit breaker
// guards every round trip: when Redis misbehaves the breaker opens and every
// lookup reports a miss, so facts resolution falls through to the repository
// instead of waiting on a broken cache.
type RedisFactsCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[string]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisFactsCache creates a facts cache with the given entry TTL.
func NewRedisFactsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisFactsCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	settings := gobreaker.Settings{
		Name:        "facts-cache",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisFactsCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

// factsRecord is the stored JSON shape: blocked dates as ISO strings plus the
// resolved week schedule.
type factsRecord struct {
	Blocked []string            `json:"blocked"`
	Week    engine.WeekSchedule `json:"week"`
}

func encodeFacts(facts engine.CalendarFacts) ([]byte, error) {
	record := factsRecord{Week: facts.Week}
	for date := range facts.Blocked {
		record.Blocked = append(record.Blocked, date.String())
	}
	return json.Marshal(record)
}

func decodeFacts(raw string) (engine.CalendarFacts, error) {
	var record factsRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return engine.CalendarFacts{}, err
	}

	facts := engine.CalendarFacts{
		Blocked: make(map[engine.Date]struct{}, len(record.Blocked)),
		Week:    record.Week,
	}
	for _, s := range record.Blocked {
		date, err := engine.ParseDate(s)
		if err != nil {
			return engine.CalendarFacts{}, err
		}
		facts.Blocked[date] = struct{}{}
	}
	return facts, nil
}

// Get looks up cached facts. Any failure, including an open breaker, is a
// miss.
func (c *RedisFactsCache) Get(ctx context.Context, collaboratorID uuid.UUID) (engine.CalendarFacts, bool) {
	raw, err := c.breaker.Execute(func() (string, error) {
		return c.client.Get(ctx, keyPrefix+collaboratorID.String()).Result()
	})
	if err != nil {
		if err != redis.Nil && err != gobreaker.ErrOpenState {
			c.logger.Debug("facts cache read failed",
				"collaborator_id", collaboratorID,
				"error", err,
			)
		}
		return engine.CalendarFacts{}, false
	}

	facts, err := decodeFacts(raw)
	if err != nil {
		c.logger.Warn("facts cache entry corrupt, dropping",
			"collaborator_id", collaboratorID,
			"error", err,
		)
		c.client.Del(ctx, keyPrefix+collaboratorID.String())
		return engine.CalendarFacts{}, false
	}
	return facts, true
}

// Set stores facts, best-effort.
func (c *RedisFactsCache) Set(ctx context.Context, collaboratorID uuid.UUID, facts engine.CalendarFacts) {
	raw, err := encodeFacts(facts)
	if err != nil {
		return
	}

	_, err = c.breaker.Execute(func() (string, error) {
		return "", c.client.Set(ctx, keyPrefix+collaboratorID.String(), raw, c.ttl).Err()
	})
	if err != nil && err != gobreaker.ErrOpenState {
		c.logger.Debug("facts cache write failed",
			"collaborator_id", collaboratorID,
			"error", err,
		)
	}
}

// Invalidate removes a collaborator's cached facts, called when calendar data
// changes.
func (c *RedisFactsCache) Invalidate(ctx context.Context, collaboratorID uuid.UUID) {
	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.client.Del(ctx, keyPrefix+collaboratorID.String()).Err()
	})
	if err != nil && err != gobreaker.ErrOpenState {
		c.logger.Debug("facts cache invalidation failed",
			"collaborator_id", collaboratorID,
			"error", err,
		)
	}
}
