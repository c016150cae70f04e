package worker

import (
	"context"

	"stagesight/internal/metrics"
	"stagesight/internal/queue"
	"stagesight/internal/storage"
	"stagesight/pkg/logger"

	"go.uber.org/zap"
)

type ProofCleanupWorker interface {
	// 訂閱清理隊列
	Start(ctx context.Context) error
}

type ProofCleanupWorkerImpl struct {
	storage storage.ObjectStorage
	queue   queue.CleanupQueue
}

func NewProofCleanupWorker(storage storage.ObjectStorage, queue queue.CleanupQueue) ProofCleanupWorker {
	return &ProofCleanupWorkerImpl{
		storage: storage,
		queue:   queue,
	}
}

func (w *ProofCleanupWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	log := logger.WithComponent("proof-cleanup")
	go func() {
		for msg := range msgs {
			if msg.Data == nil || msg.Data.StoredPath == "" {
				msg.Nack(false)
				continue
			}

			if err := w.storage.Delete(ctx, msg.Data.StoredPath); err != nil {
				// 儲存層暫時失敗，留給下次重試
				log.Warn("delete proof failed",
					zap.String("path", msg.Data.StoredPath),
					zap.String("session_id", msg.Data.SessionID),
					zap.Error(err))
				metrics.ProofCleanups.WithLabelValues("retry").Inc()
				msg.Nack(true)
				continue
			}

			log.Debug("proof deleted",
				zap.String("path", msg.Data.StoredPath),
				zap.String("reason", msg.Data.Reason))
			metrics.ProofCleanups.WithLabelValues("deleted").Inc()
			msg.Ack()
		}
	}()
	return nil
}
