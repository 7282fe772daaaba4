package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemesterGroupFor(t *testing.T) {
	assert.Equal(t, SemesterGroupOdd, SemesterGroupFor(1))
	assert.Equal(t, SemesterGroupEven, SemesterGroupFor(2))
	assert.Equal(t, SemesterGroupOdd, SemesterGroupFor(7))
	assert.Equal(t, SemesterGroupEven, SemesterGroupFor(8))
}

func TestSameSemesterGroup(t *testing.T) {
	assert.True(t, SameSemesterGroup(3, 5))
	assert.True(t, SameSemesterGroup(2, 8))
	assert.False(t, SameSemesterGroup(3, 4))
	assert.False(t, SameSemesterGroup(1, 2))
}

func TestAppliesToWeekWeekly(t *testing.T) {
	slot := &RoutineSlot{RecurrenceType: RecurrenceWeekly}
	for week := 1; week <= 16; week++ {
		assert.True(t, slot.AppliesToWeek(week))
	}
}

func TestAppliesToWeekAlternate(t *testing.T) {
	odd := WeekOdd
	slot := &RoutineSlot{RecurrenceType: RecurrenceAlternate, RecurrencePattern: &odd}
	assert.True(t, slot.AppliesToWeek(1))
	assert.False(t, slot.AppliesToWeek(2))
	assert.True(t, slot.AppliesToWeek(13))

	even := WeekEven
	slot.RecurrencePattern = &even
	assert.False(t, slot.AppliesToWeek(1))
	assert.True(t, slot.AppliesToWeek(2))
	assert.True(t, slot.AppliesToWeek(10))
}

func TestAppliesToWeekAlternateWithoutPattern(t *testing.T) {
	// A missing pattern is treated as weekly.
	slot := &RoutineSlot{RecurrenceType: RecurrenceAlternate}
	assert.True(t, slot.AppliesToWeek(1))
	assert.True(t, slot.AppliesToWeek(2))
}

func TestAppliesToWeekCustom(t *testing.T) {
	slot := &RoutineSlot{RecurrenceType: RecurrenceCustom, CustomWeeks: []int64{2, 5, 9}}
	assert.False(t, slot.AppliesToWeek(1))
	assert.True(t, slot.AppliesToWeek(2))
	assert.True(t, slot.AppliesToWeek(5))
	assert.False(t, slot.AppliesToWeek(6))
	assert.True(t, slot.AppliesToWeek(9))
}

func TestSharesLabGroupFamily(t *testing.T) {
	lab1 := "lab-split-1"
	lab2 := "lab-split-2"
	a := &RoutineSlot{LabGroupID: &lab1}
	b := &RoutineSlot{LabGroupID: &lab1}
	c := &RoutineSlot{LabGroupID: &lab2}
	d := &RoutineSlot{}

	assert.True(t, a.SharesLabGroupFamily(b))
	assert.False(t, a.SharesLabGroupFamily(c))
	assert.False(t, a.SharesLabGroupFamily(d))
	assert.False(t, d.SharesLabGroupFamily(d))
}
