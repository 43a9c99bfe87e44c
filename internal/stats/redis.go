package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder accumulates outcomes in hashes:
//
//	<prefix>:total          alighted|reneged
//	<prefix>:stage          <stage>
//	<prefix>:minute:<utc>   alighted|reneged (expires after ttl)
type RedisRecorder struct {
	rdb    *redis.Client
	prefix string
	// ttl applies to minute buckets only; totals are cumulative.
	ttl time.Duration
}

type RedisOption func(*RedisRecorder)

func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = d }
}

func NewRedisRecorder(rdb *redis.Client, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		rdb:    rdb,
		prefix: "shuttle:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRecorder) Prefix() string {
	return r.prefix
}

func (r *RedisRecorder) Record(ctx context.Context, o Outcome) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	field := outcomeField(o)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.prefix+":total", field, 1)
	if !o.Alighted && o.Stage != "" {
		pipe.HIncrBy(ctx, r.prefix+":stage", string(o.Stage), 1)
	}
	bucketKey := minuteKey(r.prefix, at)
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucketKey, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func outcomeField(o Outcome) string {
	if o.Alighted {
		return "alighted"
	}
	return "reneged"
}

func minuteKey(prefix string, at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", prefix, at.UTC().Format("200601021504"))
}
