package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stagesight/internal/model"
	"stagesight/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "proof-cleanup:stream"
	RetryKey           = "proof-cleanup:retry"
	ConsumerGroupName  = "proof-cleanup-workers"
	ConsumerNamePrefix = "worker"

	readBatch    = 10
	promoteBatch = 50
)

// RedisStreamQueueConfig 零值欄位使用預設
type RedisStreamQueueConfig struct {
	// 消費者崩潰、沒有 Ack 也沒有 Nack 的訊息，閒置超過此時間由其他消費者領回
	ClaimMinIdleTime   time.Duration
	ReadGroupBlockTime time.Duration
	// 掃描到期重試工作的間隔
	PromoteInterval time.Duration
	// XADD 的 MAXLEN ~，清理工作處理完就不需要保留
	MaxLen int64
	Retry  RetryPolicy
}

func defaultRedisStreamConfig() RedisStreamQueueConfig {
	return RedisStreamQueueConfig{
		ClaimMinIdleTime:   time.Minute,
		ReadGroupBlockTime: 2 * time.Second,
		PromoteInterval:    500 * time.Millisecond,
		MaxLen:             10000,
		Retry:              DefaultRetryPolicy(),
	}
}

// scheduleRetryScript 把失敗的工作移到延遲重試的 sorted set，同時從 stream 移除原訊息
// KEYS[1] stream, KEYS[2] retry set
// ARGV[1] group, ARGV[2] message id, ARGV[3] 重試時間 (unix ms), ARGV[4] job
const scheduleRetryScript = `
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[4])
redis.call('XACK', KEYS[1], ARGV[1], ARGV[2])
redis.call('XDEL', KEYS[1], ARGV[2])
return 1
`

// promoteRetriesScript 把到期的重試工作放回 stream
// ARGV[1] 現在時間 (unix ms), ARGV[2] 單次上限, ARGV[3] stream maxlen
const promoteRetriesScript = `
local due = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, job in ipairs(due) do
	redis.call('XADD', KEYS[1], 'MAXLEN', '~', ARGV[3], '*', 'job', job)
	redis.call('ZREM', KEYS[2], job)
end
return #due
`

type RedisStreamCleanupQueueImpl struct {
	client       *redis.Client
	consumerName string
	cfg          RedisStreamQueueConfig
	now          func() time.Time
}

// NewRedisStreamCleanupQueue 建立 Redis Stream 版 CleanupQueue。config 可為 nil。
func NewRedisStreamCleanupQueue(client *redis.Client, consumerID string, config *RedisStreamQueueConfig) (CleanupQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.ClaimMinIdleTime > 0 {
			cfg.ClaimMinIdleTime = config.ClaimMinIdleTime
		}
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
		if config.PromoteInterval > 0 {
			cfg.PromoteInterval = config.PromoteInterval
		}
		if config.MaxLen > 0 {
			cfg.MaxLen = config.MaxLen
		}
		cfg.Retry = config.Retry.withDefaults()
	}

	q := &RedisStreamCleanupQueueImpl{
		client:       client,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
		now:          time.Now,
	}
	err := client.XGroupCreateMkStream(context.Background(), StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamCleanupQueueImpl) Publish(ctx context.Context, job *model.ProofCleanupJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: q.cfg.MaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"job": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamCleanupQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); q.consume(ctx, out) }()
	go func() { defer wg.Done(); q.promoteRetries(ctx) }()
	go func() { defer wg.Done(); q.reclaimStale(ctx, out) }()
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// consume 讀新訊息；失敗重試經由 retry set 回到 stream，不從 PEL 重讀
func (q *RedisStreamCleanupQueueImpl) consume(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("mq")
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroupName,
			Consumer: q.consumerName,
			Streams:  []string{StreamKey, ">"},
			Count:    readBatch,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("XReadGroup failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		for _, stream := range streams {
			if !q.deliver(ctx, out, stream.Messages) {
				return
			}
		}
	}
}

func (q *RedisStreamCleanupQueueImpl) promoteRetries(ctx context.Context) {
	ticker := time.NewTicker(q.cfg.PromoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := q.client.Eval(ctx, promoteRetriesScript,
				[]string{StreamKey, RetryKey},
				q.now().UnixMilli(), promoteBatch, q.cfg.MaxLen,
			).Int()
			if err != nil {
				if ctx.Err() == nil {
					logger.WithComponent("mq").Error("promote retries failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				logger.WithComponent("mq").Debug("cleanup jobs requeued", zap.Int("count", n))
			}
		}
	}
}

// reclaimStale 領回其他消費者崩潰後留在 PEL 的訊息
func (q *RedisStreamCleanupQueueImpl) reclaimStale(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := "0-0"
		for {
			msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
				Stream:   StreamKey,
				Group:    ConsumerGroupName,
				Consumer: q.consumerName,
				MinIdle:  q.cfg.ClaimMinIdleTime,
				Start:    start,
				Count:    readBatch,
			}).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if ctx.Err() == nil {
					logger.WithComponent("mq").Error("XAutoClaim failed", zap.Error(err))
				}
				break
			}
			if !q.deliver(ctx, out, msgs) {
				return
			}
			if next == "" || next == "0-0" {
				break
			}
			start = next
		}
	}
}

func (q *RedisStreamCleanupQueueImpl) deliver(ctx context.Context, out chan<- Delivery, msgs []redis.XMessage) bool {
	for _, msg := range msgs {
		d, ok := q.newDelivery(ctx, msg)
		if !ok {
			continue
		}
		select {
		case out <- d:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// newDelivery 無法解析的訊息直接 Ack 丟棄
func (q *RedisStreamCleanupQueueImpl) newDelivery(ctx context.Context, msg redis.XMessage) (Delivery, bool) {
	msgID := msg.ID
	raw, _ := msg.Values["job"].(string)
	var job model.ProofCleanupJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		logger.WithComponent("mq").Warn("drop malformed cleanup message", zap.String("message_id", msgID), zap.Error(err))
		q.ack(ctx, msgID)
		return Delivery{}, false
	}

	return Delivery{
		Data: &job,
		Ack:  func() { q.ack(ctx, msgID) },
		Nack: func(requeue bool) {
			if !requeue {
				q.ack(ctx, msgID)
				return
			}
			q.scheduleRetry(ctx, msgID, nextAttempt(&job))
		},
	}, true
}

func (q *RedisStreamCleanupQueueImpl) ack(ctx context.Context, msgID string) {
	if err := q.client.XAck(ctx, StreamKey, ConsumerGroupName, msgID).Err(); err != nil {
		logger.WithComponent("mq").Error("XAck failed", zap.String("message_id", msgID), zap.Error(err))
	}
}

// scheduleRetry 失敗時訊息仍留在 PEL，之後由 reclaimStale 領回
func (q *RedisStreamCleanupQueueImpl) scheduleRetry(ctx context.Context, msgID string, job *model.ProofCleanupJob) {
	if q.cfg.Retry.Exhausted(job.Attempts) {
		logDropped(job)
		q.ack(ctx, msgID)
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.WithComponent("mq").Error("marshal retry job failed", zap.String("message_id", msgID), zap.Error(err))
		return
	}
	retryAt := q.now().Add(q.cfg.Retry.Delay(job.Attempts))
	err = q.client.Eval(ctx, scheduleRetryScript,
		[]string{StreamKey, RetryKey},
		ConsumerGroupName, msgID, retryAt.UnixMilli(), string(data),
	).Err()
	if err != nil {
		logger.WithComponent("mq").Error("schedule retry failed", zap.String("message_id", msgID), zap.Error(err))
		return
	}
	logger.WithComponent("mq").Info("cleanup job scheduled for retry",
		zap.String("message_id", msgID),
		zap.Int("attempts", job.Attempts),
		zap.Time("retry_at", retryAt))
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
