package week

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/trainweek/internal/layout"
	"github.com/julianstephens/trainweek/internal/models"
)

func TestBlockRows(t *testing.T) {
	tests := []struct {
		name     string
		geometry layout.Geometry
		lph      int
		top      int
		rows     int
	}{
		{"full hour, 2 lines", layout.Geometry{TopPercent: 0, HeightPercent: 100, MinHeight: 20}, 2, 0, 2},
		{"quarter past, 3/4 hour", layout.Geometry{TopPercent: 25, HeightPercent: 75, MinHeight: 20}, 2, 0, 2},
		{"half past, 90 min", layout.Geometry{TopPercent: 50, HeightPercent: 150, MinHeight: 20}, 2, 1, 3},
		{"tiny event floors at min height", layout.Geometry{TopPercent: 0, HeightPercent: 5, MinHeight: 20}, 1, 0, 1},
		{"zero length", layout.Geometry{TopPercent: 0, HeightPercent: 0, MinHeight: 20}, 3, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, rows := BlockRows(tt.geometry, tt.lph)
			if top != tt.top || rows != tt.rows {
				t.Errorf("BlockRows = (%d, %d), want (%d, %d)", top, rows, tt.top, tt.rows)
			}
		})
	}
}

func TestViewPlacesEventInSlot(t *testing.T) {
	m := New(time.UTC)
	m.SetSize(120, 40)
	weekStart := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	m.SetWeek(weekStart, weekStart, []models.CalendarEvent{{
		ID: 1, Title: "Ride", StartTime: "2024-06-03T09:15:00Z", EndTime: "2024-06-03T10:00:00Z", EventType: models.EventTypeWorkout,
	}})

	if blocks := m.SlotBlocks(1, 3); len(blocks) != 1 || blocks[0].Accent != layout.AccentRed {
		t.Fatalf("Mon 9 AM blocks = %+v", blocks)
	}
	if blocks := m.SlotBlocks(2, 3); len(blocks) != 0 {
		t.Errorf("Tue 9 AM should be empty, got %+v", blocks)
	}

	view := m.View()
	if !strings.Contains(view, "Ride") {
		t.Error("view does not contain event title")
	}
	if !strings.Contains(view, "9 AM") || !strings.Contains(view, "9 PM") {
		t.Error("view missing hour labels")
	}
	if !strings.Contains(view, "Mon 6/3") {
		t.Error("view missing day header")
	}
}

func TestSlotBlocksOutOfRange(t *testing.T) {
	m := New(time.UTC)
	if m.SlotBlocks(9, 0) != nil || m.SlotBlocks(0, -1) != nil {
		t.Error("out-of-range slot should be empty")
	}
}
