package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue keeps one sorted set of message ids scored by the unix-millis
// time they become visible, plus one hash per message holding the body, the
// latest receipt and the receive count. Receive, extend and complete run as
// Lua scripts so a stale handle can never move or delete a message that was
// received again in the meantime.
type RedisQueue struct {
	Client *redis.Client
	Name   string

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

func NewRedisQueue(opt *redis.Options, name string) *RedisQueue {
	return &RedisQueue{Client: redis.NewClient(opt), Name: name}
}

var receiveScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, #ARGV - 3)
local out = {}
for i, id in ipairs(ids) do
	local key = ARGV[3] .. id
	local body = redis.call('HGET', key, 'body')
	if body then
		local receipt = ARGV[3 + i]
		redis.call('ZADD', KEYS[1], ARGV[2], id)
		redis.call('HSET', key, 'receipt', receipt)
		local count = redis.call('HINCRBY', key, 'count', 1)
		table.insert(out, id)
		table.insert(out, body)
		table.insert(out, receipt)
		table.insert(out, count)
	else
		redis.call('ZREM', KEYS[1], id)
	end
end
return out
`)

var extendScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[2], 'receipt')
if not current or current ~= ARGV[1] then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
return 1
`)

var completeScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[2], 'receipt')
if not current or current ~= ARGV[1] then
	return 0
end
redis.call('ZREM', KEYS[1], ARGV[2])
redis.call('DEL', KEYS[2])
return 1
`)

func (q *RedisQueue) Enqueue(ctx context.Context, body string, delay time.Duration) (string, error) {
	id := uuid.NewString()
	visibleAt := q.now().Add(clampDelay(delay)).UnixMilli()
	_, err := q.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.messageKey(id), "body", body, "count", 0)
		pipe.ZAdd(ctx, q.scheduleKey(), redis.Z{Score: float64(visibleAt), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	return id, nil
}

func (q *RedisQueue) Receive(ctx context.Context, max int, visibility time.Duration) ([]Delivery, error) {
	if max <= 0 {
		max = 1
	}
	now := q.now()
	args := make([]any, 0, max+3)
	args = append(args,
		now.UnixMilli(),
		now.Add(clampDelay(visibility)).UnixMilli(),
		q.messagePrefix(),
	)
	for i := 0; i < max; i++ {
		args = append(args, uuid.NewString())
	}
	raw, err := receiveScript.Run(ctx, q.Client, []string{q.scheduleKey()}, args...).Slice()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	out := make([]Delivery, 0, len(raw)/4)
	for i := 0; i+3 < len(raw); i += 4 {
		id, _ := raw[i].(string)
		body, _ := raw[i+1].(string)
		receipt, _ := raw[i+2].(string)
		count, _ := raw[i+3].(int64)
		out = append(out, Delivery{
			MessageID:    id,
			Body:         body,
			Handle:       id + ":" + receipt,
			ReceiveCount: int(count),
		})
	}
	return out, nil
}

func (q *RedisQueue) ExtendDelay(ctx context.Context, handle string, delay time.Duration) error {
	id, receipt, ok := splitHandle(handle)
	if !ok {
		return ErrInvalidHandle
	}
	visibleAt := q.now().Add(clampDelay(delay)).UnixMilli()
	n, err := extendScript.Run(ctx, q.Client,
		[]string{q.scheduleKey(), q.messageKey(id)},
		receipt, visibleAt, id,
	).Int()
	if err != nil {
		return fmt.Errorf("extend delay: %w", err)
	}
	if n == 0 {
		return ErrInvalidHandle
	}
	return nil
}

func (q *RedisQueue) Complete(ctx context.Context, handle string) error {
	id, receipt, ok := splitHandle(handle)
	if !ok {
		return ErrInvalidHandle
	}
	n, err := completeScript.Run(ctx, q.Client,
		[]string{q.scheduleKey(), q.messageKey(id)},
		receipt, id,
	).Int()
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	if n == 0 {
		return ErrInvalidHandle
	}
	return nil
}

func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.Client.ZCard(ctx, q.scheduleKey()).Result()
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.Client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.Client.Close()
}

func (q *RedisQueue) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *RedisQueue) name() string {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return "guesses"
	}
	return name
}

func (q *RedisQueue) scheduleKey() string { return "queue:" + q.name() + ":schedule" }

func (q *RedisQueue) messagePrefix() string { return "queue:" + q.name() + ":msg:" }

func (q *RedisQueue) messageKey(id string) string { return q.messagePrefix() + id }

func splitHandle(handle string) (id, receipt string, ok bool) {
	id, receipt, ok = strings.Cut(handle, ":")
	if !ok || id == "" || receipt == "" {
		return "", "", false
	}
	return id, receipt, true
}
