// Package seating 產生座位圖並管理單一結帳流程中的座位選取
package seating

import (
	"strconv"

	"stagesight/internal/model"
	apperrors "stagesight/pkg/app_errors"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	MaxRows  = len(alphabet)
)

// Grid 依列排列的座位圖，每列座位以座號遞增排序
type Grid [][]model.Seat

// Generate 產生 rows x seatsPerRow 的座位圖。
// reserved 中的座位 ID 標記為 reserved，超出範圍的 ID 忽略。
// 列數需介於 1~26，每列座位數至少 1，否則回傳 ErrInvalidGridDimensions。
func Generate(rows, seatsPerRow int, reserved map[string]struct{}) (Grid, error) {
	if rows < 1 || rows > MaxRows || seatsPerRow < 1 {
		return nil, apperrors.ErrInvalidGridDimensions
	}

	grid := make(Grid, 0, rows)
	for i := 0; i < rows; i++ {
		label := string(alphabet[i])
		row := make([]model.Seat, 0, seatsPerRow)

		for j := 1; j <= seatsPerRow; j++ {
			id := label + strconv.Itoa(j)

			status := model.SeatStatusAvailable
			if _, ok := reserved[id]; ok {
				status = model.SeatStatusReserved
			}

			seatType := model.SeatTypeStandard
			if isVIP(i, j, seatsPerRow) {
				seatType = model.SeatTypeVIP
			}

			row = append(row, model.Seat{
				ID:     id,
				Row:    label,
				Number: j,
				Status: status,
				Type:   seatType,
				Price:  seatType.Price(),
			})
		}
		grid = append(grid, row)
	}

	return grid, nil
}

// isVIP 第 3~5 列 (index 2~4) 中間區段的座位為 VIP
func isVIP(rowIndex, number, seatsPerRow int) bool {
	return rowIndex >= 2 && rowIndex <= 4 && number >= 3 && number <= seatsPerRow-2
}

// ReservedSet 將座位 ID 清單轉為查詢用的集合
func ReservedSet(ids ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range ids {
		for _, id := range list {
			set[id] = struct{}{}
		}
	}
	return set
}

// Find 依座位 ID 查詢座位
func (g Grid) Find(seatID string) (model.Seat, bool) {
	for _, row := range g {
		for _, seat := range row {
			if seat.ID == seatID {
				return seat, true
			}
		}
	}
	return model.Seat{}, false
}

// Size 座位總數
func (g Grid) Size() int {
	n := 0
	for _, row := range g {
		n += len(row)
	}
	return n
}

// CountAvailable 可選座位數
func (g Grid) CountAvailable() int {
	n := 0
	for _, row := range g {
		for _, seat := range row {
			if !seat.IsReserved() {
				n++
			}
		}
	}
	return n
}
