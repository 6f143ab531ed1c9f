package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/events"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/validation"
)

// Wednesday, June 5 2024, 10:00 UTC. The visible week starts Sunday June 2.
var testNow = time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu      sync.Mutex
	events  []models.CalendarEvent
	err     error
	planErr error
	calls   []string
	nextID  int
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) callLog() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, ",")
}

func (f *fakeBackend) ListEvents(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	f.record("list")
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.CalendarEvent(nil), f.events...), nil
}

func (f *fakeBackend) CreateEvent(ctx context.Context, ev models.EventCreate) (models.CalendarEvent, error) {
	f.record("create")
	if f.err != nil {
		return models.CalendarEvent{}, f.err
	}
	f.nextID++
	created := models.CalendarEvent{ID: f.nextID, Title: ev.Title, StartTime: ev.StartTime, EndTime: ev.EndTime}
	f.events = append(f.events, created)
	return created, nil
}

func (f *fakeBackend) UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.CalendarEvent, error) {
	f.record("update")
	if f.err != nil {
		return models.CalendarEvent{}, f.err
	}
	return models.CalendarEvent{ID: id, Title: *patch.Title, StartTime: *patch.StartTime, EndTime: *patch.EndTime}, nil
}

func (f *fakeBackend) DeleteEvent(ctx context.Context, id int) error {
	f.record("delete")
	return f.err
}

func (f *fakeBackend) GenerateTrainingPlan(ctx context.Context, prefs models.PlanPreferences) (json.RawMessage, error) {
	f.record("plan")
	if f.planErr != nil {
		return nil, f.planErr
	}
	return json.RawMessage(`{"workouts":[]}`), nil
}

func newTestModel(t *testing.T, backend *fakeBackend) (Model, *calendar.State) {
	t.Helper()
	state := calendar.NewState(testNow, time.Sunday).WithClock(func() time.Time { return testNow })
	ctx := calendar.WithState(context.Background(), state)
	store := events.NewStore(backend)

	m, err := NewModel(ctx, store, backend, time.UTC)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	t.Cleanup(m.Close)
	m.now = func() time.Time { return testNow }
	m.busy = false
	m.resetCursor()
	m.syncViews()
	return m, state
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestNewModelRequiresProvider(t *testing.T) {
	_, err := NewModel(context.Background(), events.NewStore(&fakeBackend{}), &fakeBackend{}, time.UTC)
	if !errors.Is(err, calendar.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestCursorStartsAtCurrentSlot(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	if m.cursorDay != 3 || m.cursorHour != 4 {
		t.Errorf("cursor = (%d, %d), want (3, 4)", m.cursorDay, m.cursorHour)
	}
	slot := m.selectedSlot()
	if !slot.Start.Equal(testNow) {
		t.Errorf("selected slot starts %v, want %v", slot.Start, testNow)
	}
}

func TestWeekNavigationKeys(t *testing.T) {
	m, state := newTestModel(t, &fakeBackend{})

	m, cmd := step(t, m, runes("]"))
	if cmd == nil || !m.busy {
		t.Fatal("next week should start a fetch")
	}
	want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	if !state.WeekStart().Equal(want) {
		t.Fatalf("week start = %v, want %v", state.WeekStart(), want)
	}

	// Ignored while the fetch is in flight.
	m, cmd = step(t, m, runes("]"))
	if cmd != nil || !state.WeekStart().Equal(want) {
		t.Fatal("navigation should be ignored while busy")
	}

	m, _ = step(t, m, eventsLoadedMsg{})
	m, _ = step(t, m, runes("p"))
	m, _ = step(t, m, eventsLoadedMsg{})
	m, _ = step(t, m, runes("p"))
	if got := state.WeekStart(); !got.Equal(time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week start after two prev = %v", got)
	}

	m, _ = step(t, m, eventsLoadedMsg{})
	_, _ = step(t, m, runes("t"))
	if got := state.WeekStart(); !got.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("today should return to the current week, got %v", got)
	}
}

func TestEnterOnEmptySlotOpensBlankDraft(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateEditing {
		t.Fatalf("state = %v, want editing", m.state)
	}
	if m.editing != nil {
		t.Error("blank slot should open a create modal")
	}
	if m.eventForm.Title != "" {
		t.Errorf("title = %q, want empty", m.eventForm.Title)
	}
	if want := testNow.Format(constants.DateTimeFormat); m.eventForm.Start != want {
		t.Errorf("start = %q, want %q", m.eventForm.Start, want)
	}
	if want := testNow.Add(time.Hour).Format(constants.DateTimeFormat); m.eventForm.End != want {
		t.Errorf("end = %q, want %q", m.eventForm.End, want)
	}
}

func TestEmptyTitleSendsNoRequest(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.openSlot()
	m.eventForm.Title = "   "

	m.submitEventForm()

	if got := backend.callLog(); got != "" {
		t.Errorf("expected no backend calls, got %q", got)
	}
	if m.state != StateEditing {
		t.Error("modal should stay open")
	}
	if m.inFlight() {
		t.Error("no request should be in flight")
	}
	if m.formErr != validation.ErrEmptyTitle.Error() {
		t.Errorf("formErr = %q", m.formErr)
	}
}

func TestCreateRefetchesWeek(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.openSlot()
	m.eventForm.Title = "Tempo run"

	cmd := m.submitEventForm()
	if cmd == nil || !m.saving {
		t.Fatal("submit should issue a create")
	}
	m, cmd = step(t, m, cmd())
	if m.state != StateCalendar {
		t.Errorf("state = %v, want calendar after create", m.state)
	}
	if cmd == nil {
		t.Fatal("create should be followed by a fetch")
	}
	m, _ = step(t, m, cmd())

	if got := backend.callLog(); got != "create,list" {
		t.Errorf("calls = %q, want create,list", got)
	}
	if m.busy {
		t.Error("busy should clear after the fetch")
	}
	blocks := m.week.SlotBlocks(3, 4)
	if len(blocks) != 1 || blocks[0].Event.Title != "Tempo run" {
		t.Errorf("Wed 10 AM blocks = %+v", blocks)
	}
}

func TestEditAndDeleteFocusedEvent(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.events.Seed([]models.CalendarEvent{
		{ID: 7, Title: "Swim", StartTime: "2024-06-05T10:00:00Z", EndTime: "2024-06-05T11:00:00Z"},
		{ID: 8, Title: "Stretch", StartTime: "2024-06-05T10:30:00Z", EndTime: "2024-06-05T10:45:00Z"},
	})
	m.syncViews()

	m, _ = step(t, m, runes(" "))
	if m.focus != 1 {
		t.Fatalf("focus = %d, want 1 after cycling", m.focus)
	}
	m, _ = step(t, m, runes("e"))
	if m.state != StateEditing || m.editing == nil || m.editing.ID != 8 {
		t.Fatalf("expected to edit event 8, got state %v editing %+v", m.state, m.editing)
	}
	if m.eventForm.Title != "Stretch" {
		t.Errorf("draft title = %q", m.eventForm.Title)
	}

	m.eventForm.Delete = true
	cmd := m.submitEventForm()
	m, _ = step(t, m, cmd())

	if got := backend.callLog(); got != "delete" {
		t.Errorf("calls = %q, want delete", got)
	}
	if m.state != StateCalendar {
		t.Error("modal should close after delete")
	}
	remaining := m.events.Events()
	if len(remaining) != 1 || remaining[0].ID != 7 {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestFailedUpdateKeepsModalOpen(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.events.Seed([]models.CalendarEvent{
		{ID: 3, Title: "Ride", StartTime: "2024-06-05T10:00:00Z", EndTime: "2024-06-05T11:00:00Z"},
	})
	m.syncViews()
	m, _ = step(t, m, runes("e"))

	backend.err = errors.New("boom")
	m.eventForm.Title = "Long ride"
	cmd := m.submitEventForm()
	m, _ = step(t, m, cmd())

	if m.state != StateEditing {
		t.Fatal("modal should stay open after a failed save")
	}
	if !strings.Contains(m.formErr, "Error updating event") {
		t.Errorf("formErr = %q", m.formErr)
	}
	if got := m.events.Events()[0].Title; got != "Ride" {
		t.Errorf("local list changed on failure: %q", got)
	}
}

func TestPlanGenerationTriggersRefresh(t *testing.T) {
	backend := &fakeBackend{}
	m, state := newTestModel(t, backend)

	m, _ = step(t, m, runes("g"))
	if m.state != StateGenerate {
		t.Fatalf("state = %v, want generate", m.state)
	}

	m.prefs.WorkoutTypes = []string{"running", "yoga"}
	m.submitPlanForm()
	if !m.saving {
		t.Fatal("submit should mark a request in flight")
	}
	plan, err := backend.GenerateTrainingPlan(context.Background(), *m.prefs)
	m, _ = step(t, m, planGeneratedMsg{plan: plan, err: err})

	if state.RefreshCount() != 1 {
		t.Errorf("refresh count = %d, want 1", state.RefreshCount())
	}
	if m.planErr != "" || m.planStatus == "" {
		t.Errorf("status = %q, err = %q", m.planStatus, m.planErr)
	}
}

func TestPlanGenerationFailure(t *testing.T) {
	backend := &fakeBackend{}
	m, state := newTestModel(t, backend)
	m.state = StateGenerate

	m, _ = step(t, m, planGeneratedMsg{err: errors.New("planner offline")})
	if !strings.HasPrefix(m.planErr, "Error generating training plan") {
		t.Errorf("planErr = %q", m.planErr)
	}
	if state.RefreshCount() != 0 {
		t.Error("failed generation must not refresh")
	}
}

func TestInvalidPreferencesAreNotSubmitted(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.state = StateGenerate
	m.prefs.WorkoutTypes = nil

	m.submitPlanForm()

	if m.inFlight() || backend.callLog() != "" {
		t.Error("invalid preferences should not be sent")
	}
	if !strings.Contains(m.planErr, "at least one workout type") {
		t.Errorf("planErr = %q", m.planErr)
	}
}

func TestRefreshMessageRefetches(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)

	m, cmd := step(t, m, refreshMsg{count: 1})
	if cmd == nil || !m.busy {
		t.Fatal("refresh should start a fetch")
	}
}

func TestViewShowsWeekTitleAndBanner(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	m, _ := newTestModel(t, backend)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 140, Height: 50})

	m, cmd := step(t, m, runes("r"))
	m, _ = step(t, m, cmd())

	view := m.View()
	if !strings.Contains(view, "Week of June 2, 2024") {
		t.Error("view missing week title")
	}
	if !strings.Contains(view, "Error fetching events") {
		t.Error("view missing error banner")
	}
}

// runAll executes cmd and every command it batches, collecting the messages.
func runAll(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runAll(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestCompletedModalSubmitsOnce(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
	}{
		{"cursor blink", []tea.Msg{cursor.BlinkMsg{}, cursor.BlinkMsg{}}},
		{"mouse", []tea.Msg{tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}}},
		{"keys", []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}, runes("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			m, _ := newTestModel(t, backend)
			m.openSlot()
			m.eventForm.Title = "Ride"
			m.form.State = huh.StateCompleted

			m, first := step(t, m, cursor.BlinkMsg{})
			if !m.saving {
				t.Fatal("completing the modal should start a save")
			}
			var later []tea.Cmd
			for _, msg := range tt.msgs {
				var cmd tea.Cmd
				m, cmd = step(t, m, msg)
				later = append(later, cmd)
			}

			runAll(first)
			for _, cmd := range later {
				runAll(cmd)
			}
			if got := backend.callLog(); got != "create" {
				t.Errorf("backend calls = %q, want a single create", got)
			}
		})
	}
}

func TestRefreshDuringSaveKeepsModalLocked(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestModel(t, backend)
	m.events.Seed([]models.CalendarEvent{
		{ID: 3, Title: "Ride", StartTime: "2024-06-05T10:00:00Z", EndTime: "2024-06-05T11:00:00Z"},
	})
	m.syncViews()
	m, _ = step(t, m, runes("e"))

	m.eventForm.Title = "Long ride"
	m.form.State = huh.StateCompleted
	m, save := step(t, m, cursor.BlinkMsg{})
	if save == nil || !m.saving {
		t.Fatal("completing the modal should start an update")
	}

	// A cron refresh lands and its fetch settles before the update does.
	m, refresh := step(t, m, refreshMsg{count: 1})
	if refresh == nil || !m.busy {
		t.Fatal("refresh should start a fetch")
	}
	m, _ = step(t, m, m.fetchWeek()())
	if m.busy {
		t.Error("fetch should have settled")
	}
	if !m.saving {
		t.Fatal("a settled fetch must not clear the pending save")
	}

	m, cmd := step(t, m, cursor.BlinkMsg{})
	if cmd != nil {
		t.Error("input during a save should be dropped")
	}
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("keys during a save should be dropped")
	}

	m, _ = step(t, m, save())
	if got := backend.callLog(); got != "list,update" {
		t.Errorf("backend calls = %q, want list,update", got)
	}
	if m.saving || m.state != StateCalendar {
		t.Errorf("saving = %v, state = %v after the update settled", m.saving, m.state)
	}
}

func TestCtrlCQuitsWhileSaving(t *testing.T) {
	m, _ := newTestModel(t, &fakeBackend{})
	m.openSlot()
	m.saving = true

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.quitting {
		t.Fatal("ctrl+c should quit even while a save is pending")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a quit command")
	}
}
