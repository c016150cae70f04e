package seating

import (
	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"
)

const DefaultMaxSelection = 10

// ToggleResult 切換座位後的結果
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
)

// Selection 單一結帳流程的選位集合，保留加入順序，不可並行修改
type Selection struct {
	Max   int          `json:"max"`
	Items []model.Seat `json:"items"`
}

func NewSelection(max int) *Selection {
	if max <= 0 {
		max = DefaultMaxSelection
	}
	return &Selection{Max: max, Items: make([]model.Seat, 0, max)}
}

// Toggle 已選取則移除，未選取則加入。
// reserved 座位回傳 ErrSeatReserved，已達上限回傳 ErrSelectionFull，兩者皆不改變選取內容。
func (s *Selection) Toggle(seat model.Seat) (ToggleResult, error) {
	if seat.IsReserved() {
		return "", apperrors.ErrSeatReserved
	}

	if i := s.indexOf(seat.ID); i >= 0 {
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
		return ToggleRemoved, nil
	}

	if len(s.Items) >= s.Max {
		return "", apperrors.ErrSelectionFull
	}

	s.Items = append(s.Items, seat)
	return ToggleAdded, nil
}

func (s *Selection) IsSelected(seatID string) bool {
	return s.indexOf(seatID) >= 0
}

func (s *Selection) Len() int {
	return len(s.Items)
}

// Seats 回傳選取座位的副本
func (s *Selection) Seats() []model.Seat {
	out := make([]model.Seat, len(s.Items))
	copy(out, s.Items)
	return out
}

func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.Items))
	for _, seat := range s.Items {
		ids = append(ids, seat.ID)
	}
	return ids
}

func (s *Selection) Total() int {
	return Total(s.Items)
}

func (s *Selection) Reset() {
	s.Items = s.Items[:0]
}

func (s *Selection) indexOf(seatID string) int {
	for i, seat := range s.Items {
		if seat.ID == seatID {
			return i
		}
	}
	return -1
}
