package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	require.Len(t, Slots, 27)
	assert.Equal(t, "09:00", Slots[0])
	assert.Equal(t, "09:30", Slots[1])
	assert.Equal(t, "22:00", Slots[len(Slots)-1])
}

func TestGridBlocksDurationSlots(t *testing.T) {
	grid := Grid([]uint{1, 2}, []Booking{{TableID: 1, Time: "12:00", Duration: 2}})

	for _, s := range []string{"12:00", "12:30", "13:00", "13:30"} {
		assert.False(t, grid[1][s], s)
	}
	assert.True(t, grid[1]["11:30"])
	assert.True(t, grid[1]["14:00"])

	for _, s := range Slots {
		assert.True(t, grid[2][s], "other table %s", s)
	}
}

func TestGridEdgeCases(t *testing.T) {
	t.Run("off-grid time blocks nothing", func(t *testing.T) {
		grid := Grid([]uint{1}, []Booking{{TableID: 1, Time: "12:15", Duration: 2}})
		for _, s := range Slots {
			assert.True(t, grid[1][s], s)
		}
	})

	t.Run("late booking is clipped at closing", func(t *testing.T) {
		grid := Grid([]uint{1}, []Booking{{TableID: 1, Time: "21:30", Duration: 3}})
		assert.False(t, grid[1]["21:30"])
		assert.False(t, grid[1]["22:00"])
		assert.True(t, grid[1]["21:00"])
	})

	t.Run("zero duration uses default", func(t *testing.T) {
		grid := Grid([]uint{1}, []Booking{{TableID: 1, Time: "10:00"}})
		assert.False(t, grid[1]["11:30"])
		assert.True(t, grid[1]["12:00"])
	})

	t.Run("fractional duration rounds up", func(t *testing.T) {
		grid := Grid([]uint{1}, []Booking{{TableID: 1, Time: "10:00", Duration: 1.25}})
		assert.False(t, grid[1]["11:00"])
		assert.True(t, grid[1]["11:30"])
	})

	t.Run("unknown table ignored", func(t *testing.T) {
		grid := Grid([]uint{1}, []Booking{{TableID: 9, Time: "10:00"}})
		assert.Len(t, grid, 1)
	})
}

func TestConflicts(t *testing.T) {
	existing := []Booking{{TableID: 1, Time: "19:00", Duration: 2}}

	assert.True(t, Conflicts(Booking{TableID: 1, Time: "19:00"}, existing, false))
	assert.False(t, Conflicts(Booking{TableID: 2, Time: "19:00"}, existing, false))

	// 19:30 overlaps a 19:00-21:00 booking but only strict mode sees it
	assert.False(t, Conflicts(Booking{TableID: 1, Time: "19:30", Duration: 2}, existing, false))
	assert.True(t, Conflicts(Booking{TableID: 1, Time: "19:30", Duration: 2}, existing, true))

	// back to back is not an overlap
	assert.False(t, Conflicts(Booking{TableID: 1, Time: "21:00", Duration: 1}, existing, true))
	assert.True(t, Conflicts(Booking{TableID: 1, Time: "17:30", Duration: 2}, existing, true))
	assert.False(t, Conflicts(Booking{TableID: 1, Time: "17:00", Duration: 2}, existing, true))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	for _, bad := range []string{"9.30pm", "25:00", "9:00", "09:5", "09:00:00", " 09:00"} {
		_, err = ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
