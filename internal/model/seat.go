package model

// SeatStatus 座位狀態，座位圖產生後即不再變動；使用者的選取另外記錄
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
)

// SeatType 座位等級
type SeatType string

const (
	SeatTypeStandard SeatType = "standard"
	SeatTypeVIP      SeatType = "vip"
)

const (
	StandardSeatPrice = 1100
	VIPSeatPrice      = 1600
)

// Price 回傳該等級的固定票價
func (t SeatType) Price() int {
	if t == SeatTypeVIP {
		return VIPSeatPrice
	}
	return StandardSeatPrice
}

// Seat 座位模型，ID 格式為 {row}{number}，例如 C7
type Seat struct {
	ID     string     `json:"id"`
	Row    string     `json:"row"`
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
	Type   SeatType   `json:"type"`
	Price  int        `json:"price"`
}

// IsReserved 檢查座位是否已被預訂
func (s Seat) IsReserved() bool {
	return s.Status == SeatStatusReserved
}
