package seating_test

import (
	"testing"

	"stagesight/internal/model"
	"stagesight/internal/seating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, seating.Total(nil))
		assert.Equal(t, 0, seating.NewSelection(10).Total())
	})

	t.Run("Mixed standard and VIP", func(t *testing.T) {
		grid := mustGrid(t)
		sel := seating.NewSelection(10)

		c9 := mustSeat(t, grid, "C9")
		d5 := mustSeat(t, grid, "D5")
		a1 := mustSeat(t, grid, "A1")
		require.Equal(t, model.SeatTypeVIP, c9.Type)
		require.Equal(t, model.SeatTypeVIP, d5.Type)
		require.Equal(t, model.SeatTypeStandard, a1.Type)

		for _, seat := range []model.Seat{c9, d5, a1} {
			_, err := sel.Toggle(seat)
			require.NoError(t, err)
		}

		want := c9.Price + d5.Price + a1.Price
		assert.Equal(t, want, sel.Total())
		assert.Equal(t, 2*model.VIPSeatPrice+model.StandardSeatPrice, seating.Total(sel.Seats()))
	})
}
