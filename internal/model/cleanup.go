package model

import "time"

// ProofCleanupJob 待刪除的付款證明檔案 (結帳取消或重新上傳後留下的孤兒檔)
type ProofCleanupJob struct {
	StoredPath string    `json:"stored_path"`
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	// 已失敗次數，決定下次重試的延遲
	Attempts int `json:"attempts"`
}
