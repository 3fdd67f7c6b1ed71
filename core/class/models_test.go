package class

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotAt(t *testing.T) {
	cls := Class{
		Name: "Physics 2AS",
		Schedule: []ScheduleSlot{
			{Day: "saturday", Time: "09:00", ClassroomID: "room-1"},
			{Day: "wednesday", Time: "17:30", ClassroomID: "room-2"},
		},
	}
	window := 30 * time.Minute

	// 2025-06-14 is a Saturday
	saturday := time.Date(2025, time.June, 14, 9, 10, 0, 0, time.UTC)

	slot := cls.SlotAt(saturday, window)
	require.NotNil(t, slot)
	assert.Equal(t, "09:00", slot.Time)

	// a swipe slightly before the session still counts
	slot = cls.SlotAt(saturday.Add(-25*time.Minute), window)
	require.NotNil(t, slot)
	assert.Equal(t, "09:00", slot.Time)

	// outside the window
	assert.Nil(t, cls.SlotAt(saturday.Add(2*time.Hour), window))

	// right day, wrong week slot
	wednesday := time.Date(2025, time.June, 18, 17, 45, 0, 0, time.UTC)
	slot = cls.SlotAt(wednesday, window)
	require.NotNil(t, slot)
	assert.Equal(t, "room-2", slot.ClassroomID)

	// no sessions on Monday
	monday := time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)
	assert.Nil(t, cls.SlotAt(monday, window))
}

func TestNewClassValidate(t *testing.T) {
	nc := &NewClass{
		Name:    "  Math 3AS ",
		Subject: "math",
		Price:   2500,
		Schedule: []ScheduleSlot{
			{Day: "saturday", Time: "09:00"},
		},
	}
	require.NoError(t, nc.Validate())
	assert.Equal(t, "Math 3AS", nc.Name)

	bad := &NewClass{Name: "X", Price: 100, Schedule: []ScheduleSlot{{Day: "someday", Time: "09:00"}}}
	assert.Error(t, bad.Validate())

	badTime := &NewClass{Name: "X", Price: 100, Schedule: []ScheduleSlot{{Day: "monday", Time: "9am"}}}
	assert.Error(t, badTime.Validate())

	noPrice := &NewClass{Name: "X"}
	assert.Error(t, noPrice.Validate())
}

func TestHasStudent(t *testing.T) {
	cls := Class{StudentIDs: []string{"a", "b"}}
	assert.True(t, cls.HasStudent("a"))
	assert.False(t, cls.HasStudent("c"))
}
