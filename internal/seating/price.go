package seating

import "stagesight/internal/model"

// Total 加總座位票價，不含任何幣別格式
func Total(seats []model.Seat) int {
	sum := 0
	for _, seat := range seats {
		sum += seat.Price
	}
	return sum
}
