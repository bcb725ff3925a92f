// Package availability resolves table occupancy on the half-hour grid.
package availability

import (
	"fmt"
	"math"
	"time"
)

const (
	slotLength = 30 * time.Minute
	firstSlot  = 9 * time.Hour
	lastSlot   = 22 * time.Hour
)

// Slots are the bookable start times, 09:00 through 22:00 inclusive.
var Slots = func() []string {
	var out []string
	for t := firstSlot; t <= lastSlot; t += slotLength {
		out = append(out, fmt.Sprintf("%02d:%02d", int(t.Hours()), int(t.Minutes())%60))
	}
	return out
}()

// Booking is the part of a reservation that occupies a table.
type Booking struct {
	TableID  uint
	Time     string  // HH:MM
	Duration float64 // hours; zero means the default of 2
}

func (b Booking) hours() float64 {
	if b.Duration <= 0 {
		return 2
	}
	return b.Duration
}

// SlotsBlocked is how many half-hour slots a booking of the given length covers.
func SlotsBlocked(hours float64) int {
	return int(math.Ceil(hours * 2))
}

// Grid marks every slot of every table free, then blocks the slots of
// each booking starting at its time. Bookings whose time is not on the grid
// block nothing. Bookings for tables not in tableIDs are ignored.
func Grid(tableIDs []uint, bookings []Booking) map[uint]map[string]bool {
	grid := make(map[uint]map[string]bool, len(tableIDs))
	for _, id := range tableIDs {
		row := make(map[string]bool, len(Slots))
		for _, s := range Slots {
			row[s] = true
		}
		grid[id] = row
	}

	for _, b := range bookings {
		row, ok := grid[b.TableID]
		if !ok {
			continue
		}
		start := slotIndex(b.Time)
		if start < 0 {
			continue
		}
		for i := 0; i < SlotsBlocked(b.hours()) && start+i < len(Slots); i++ {
			row[Slots[start+i]] = false
		}
	}
	return grid
}

func slotIndex(clock string) int {
	for i, s := range Slots {
		if s == clock {
			return i
		}
	}
	return -1
}

// ParseClock converts HH:MM to minutes after midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil || t.Format("15:04") != clock {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Overlaps reports whether [a, a+aHours) and [b, b+bHours) intersect.
func Overlaps(a Booking, b Booking) bool {
	as, err := ParseClock(a.Time)
	if err != nil {
		return false
	}
	bs, err := ParseClock(b.Time)
	if err != nil {
		return false
	}
	ae := as + int(a.hours()*60)
	be := bs + int(b.hours()*60)
	return as < be && bs < ae
}

// Conflicts reports whether candidate clashes with any existing booking on
// the same table. Without strict, only an identical start time clashes.
func Conflicts(candidate Booking, existing []Booking, strict bool) bool {
	for _, e := range existing {
		if e.TableID != candidate.TableID {
			continue
		}
		if e.Time == candidate.Time {
			return true
		}
		if strict && Overlaps(candidate, e) {
			return true
		}
	}
	return false
}
