package seating_test

import (
	"fmt"
	"testing"

	"stagesight/internal/model"
	"stagesight/internal/seating"
	apperrors "stagesight/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("Success - size and unique ids", func(t *testing.T) {
		for _, dims := range [][2]int{{1, 1}, {3, 4}, {10, 20}, {26, 30}} {
			rows, perRow := dims[0], dims[1]
			grid, err := seating.Generate(rows, perRow, nil)
			require.NoError(t, err)

			assert.Len(t, grid, rows)
			assert.Equal(t, rows*perRow, grid.Size())

			seen := map[string]bool{}
			for i, row := range grid {
				assert.Len(t, row, perRow)
				for j, seat := range row {
					assert.False(t, seen[seat.ID], "duplicate id %s", seat.ID)
					seen[seat.ID] = true
					assert.Equal(t, string(rune('A'+i)), seat.Row)
					assert.Equal(t, j+1, seat.Number)
					assert.Equal(t, fmt.Sprintf("%s%d", seat.Row, seat.Number), seat.ID)
				}
			}
		}
	})

	t.Run("Success - reserved seats", func(t *testing.T) {
		reserved := seating.ReservedSet([]string{"C7", "C8", "Z99"})
		grid, err := seating.Generate(10, 20, reserved)
		require.NoError(t, err)

		c7, ok := grid.Find("C7")
		require.True(t, ok)
		assert.Equal(t, model.SeatStatusReserved, c7.Status)

		c8, _ := grid.Find("C8")
		assert.Equal(t, model.SeatStatusReserved, c8.Status)

		c9, _ := grid.Find("C9")
		assert.Equal(t, model.SeatStatusAvailable, c9.Status)

		// Z99 超出座位圖範圍，忽略
		assert.Equal(t, 200, grid.Size())
		assert.Equal(t, 198, grid.CountAvailable())
	})

	t.Run("Success - VIP rule", func(t *testing.T) {
		for _, perRow := range []int{1, 4, 5, 20} {
			grid, err := seating.Generate(8, perRow, nil)
			require.NoError(t, err)
			for i, row := range grid {
				for _, seat := range row {
					wantVIP := i >= 2 && i <= 4 && seat.Number >= 3 && seat.Number <= perRow-2
					if wantVIP {
						assert.Equal(t, model.SeatTypeVIP, seat.Type, seat.ID)
						assert.Equal(t, model.VIPSeatPrice, seat.Price, seat.ID)
					} else {
						assert.Equal(t, model.SeatTypeStandard, seat.Type, seat.ID)
						assert.Equal(t, model.StandardSeatPrice, seat.Price, seat.ID)
					}
				}
			}
		}
	})

	t.Run("Success - deterministic", func(t *testing.T) {
		reserved := seating.ReservedSet([]string{"A1", "B2"})
		first, err := seating.Generate(5, 6, reserved)
		require.NoError(t, err)
		second, err := seating.Generate(5, 6, reserved)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Failed - invalid dimensions", func(t *testing.T) {
		for _, dims := range [][2]int{{0, 10}, {27, 10}, {5, 0}, {-1, -1}} {
			grid, err := seating.Generate(dims[0], dims[1], nil)
			assert.ErrorIs(t, err, apperrors.ErrInvalidGridDimensions)
			assert.Nil(t, grid)
		}
	})
}
