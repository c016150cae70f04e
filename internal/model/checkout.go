package model

// CheckoutState 結帳流程狀態類型
type CheckoutState string

const (
	CheckoutStateCollecting    CheckoutState = "collecting"
	CheckoutStateProofRequired CheckoutState = "proof_required"
	CheckoutStateReady         CheckoutState = "ready"
	CheckoutStateSubmitting    CheckoutState = "submitting"
	CheckoutStateConfirmed     CheckoutState = "confirmed"
	CheckoutStateFailed        CheckoutState = "failed"
)

// IsValid 驗證狀態是否有效
func (s CheckoutState) IsValid() bool {
	switch s {
	case CheckoutStateCollecting, CheckoutStateProofRequired, CheckoutStateReady,
		CheckoutStateSubmitting, CheckoutStateConfirmed, CheckoutStateFailed:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s CheckoutState) CanTransitionTo(target CheckoutState) bool {
	transitions := map[CheckoutState][]CheckoutState{
		CheckoutStateCollecting:    {CheckoutStateProofRequired, CheckoutStateReady},
		CheckoutStateProofRequired: {CheckoutStateCollecting, CheckoutStateReady},
		CheckoutStateReady:         {CheckoutStateCollecting, CheckoutStateProofRequired, CheckoutStateSubmitting},
		CheckoutStateSubmitting:    {CheckoutStateConfirmed, CheckoutStateFailed},
		// 失敗後保留表單並回到 Ready，可直接重試
		CheckoutStateFailed:    {CheckoutStateReady},
		CheckoutStateConfirmed: {}, // 不能轉換到任何狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}
	return false
}

// IsTerminal 檢查是否已完成
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateConfirmed
}
