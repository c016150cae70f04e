package queue

import (
	"context"
	"time"

	"stagesight/internal/model"
	"stagesight/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.ProofCleanupJob
	Ack  func()
	Nack func(requeue bool)
}

type CleanupQueue interface {
	// 發送清理工作到隊列
	Publish(ctx context.Context, job *model.ProofCleanupJob) error
	// 訂閱清理隊列
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// RetryPolicy Nack(requeue) 後的重試節奏；零值欄位使用預設
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
		MaxAttempts: 5,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	return p
}

// Delay 第 attempts 次失敗後的等待時間，每次加倍直到 MaxDelay
func (p RetryPolicy) Delay(attempts int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempts && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Exhausted 失敗次數已達上限，工作直接丟棄
func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// nextAttempt 複製一份失敗次數加一的 job，不改動已投遞的那份
func nextAttempt(job *model.ProofCleanupJob) *model.ProofCleanupJob {
	next := *job
	next.Attempts++
	return &next
}

func logDropped(job *model.ProofCleanupJob) {
	logger.WithComponent("mq").Warn("drop cleanup job after max attempts",
		zap.String("path", job.StoredPath),
		zap.String("session_id", job.SessionID),
		zap.Int("attempts", job.Attempts))
}

type MemoryCleanupQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch    chan *model.ProofCleanupJob
	retry RetryPolicy
}

// NewMemoryCleanupQueue policy 可為 nil，則使用 DefaultRetryPolicy
func NewMemoryCleanupQueue(bufferSize int, policy *RetryPolicy) CleanupQueue {
	retry := DefaultRetryPolicy()
	if policy != nil {
		retry = policy.withDefaults()
	}
	return &MemoryCleanupQueueImpl{
		ch:    make(chan *model.ProofCleanupJob, bufferSize),
		retry: retry,
	}
}

func (q *MemoryCleanupQueueImpl) Publish(ctx context.Context, job *model.ProofCleanupJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryCleanupQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 job 包裝成 Delivery 格式給 Worker
				d := Delivery{
					Data: job,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.requeueLater(ctx, nextAttempt(job))
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// requeueLater 等待重試延遲後放回 channel；超過次數上限則丟棄
func (q *MemoryCleanupQueueImpl) requeueLater(ctx context.Context, job *model.ProofCleanupJob) {
	if q.retry.Exhausted(job.Attempts) {
		logDropped(job)
		return
	}
	delay := q.retry.Delay(job.Attempts)
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
		select {
		case q.ch <- job:
		case <-ctx.Done():
		}
	}()
}
