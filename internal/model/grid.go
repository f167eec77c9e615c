package model

import "fmt"

// Grid is the weekly slot layout. Slots are indexed absolutely across the
// week: slot = day*SlotsPerDay + period, so every per-slot structure is a
// flat array and day arithmetic is two integer ops.
type Grid struct {
	Days        []string
	SlotsPerDay int
}

func (grid Grid) TotalSlots() int {
	return len(grid.Days) * grid.SlotsPerDay
}

func (grid Grid) Day(slot int) int {
	return slot / grid.SlotsPerDay
}

func (grid Grid) Period(slot int) int {
	return slot % grid.SlotsPerDay
}

func (grid Grid) Slot(day, period int) int {
	return day*grid.SlotsPerDay + period
}

func (grid Grid) SlotLabel(slot int) string {
	return fmt.Sprintf("%v[%v]", grid.Days[grid.Day(slot)], grid.Period(slot))
}
