package booking

import (
	"testing"
	"time"
)

func TestWeeklySchedule_ForWeekday(t *testing.T) {
	ws := WeeklySchedule{
		{Day: "Monday", Periods: []Period{{Start: "09:00", End: "12:00"}}},
		{Day: "wednesday", Periods: []Period{{Start: "14:00", End: "17:00"}}},
	}

	day, ok := ws.ForWeekday(time.Monday)
	if !ok {
		t.Fatal("monday entry not found")
	}
	if len(day.Periods) != 1 || day.Periods[0].Start != "09:00" {
		t.Fatalf("monday periods = %v", day.Periods)
	}

	if _, ok := ws.ForWeekday(time.Wednesday); !ok {
		t.Fatal("lowercase wednesday entry not found")
	}

	if _, ok := ws.ForWeekday(time.Sunday); ok {
		t.Fatal("sunday should be a day off")
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted} {
		if !KnownStatus(s) {
			t.Errorf("KnownStatus(%s) = false", s)
		}
	}
	if KnownStatus("archived") {
		t.Error("KnownStatus(archived) = true")
	}
	if KnownStatus("") {
		t.Error("KnownStatus(empty) = true")
	}
}
