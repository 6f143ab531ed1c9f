package plans

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/config"
	"github.com/julianstephens/trainweek/internal/models"
)

func setupTestContext(t *testing.T, handler http.HandlerFunc) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.RefreshCron = ""
	cfg.CachePath = "cache.json"
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out := &bytes.Buffer{}
	ctx, err := cli.NewContext(path, cli.Options{LogMirror: io.Discard, Out: out})
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, out
}

func defaultCmd() *GenerateCmd {
	return &GenerateCmd{
		Frequency:     4,
		TimeOfDay:     "evening",
		Duration:      45,
		PaddingBefore: 10,
		PaddingAfter:  5,
		Types:         []string{"running", "yoga"},
		Difficulty:    "hard",
		Days:          []string{" Monday", "thursday "},
	}
}

func TestPreferences(t *testing.T) {
	prefs := defaultCmd().Preferences()

	if prefs.FrequencyPerWeek != 4 || prefs.WorkoutDurationMinutes != 45 {
		t.Errorf("unexpected numbers: %+v", prefs)
	}
	if prefs.PreferredTimeOfDay != models.TimeOfDayEvening || prefs.DifficultyLevel != models.DifficultyHard {
		t.Errorf("unexpected enums: %+v", prefs)
	}
	if strings.Join(prefs.DaysOfWeek, ",") != "monday,thursday" {
		t.Errorf("days = %v", prefs.DaysOfWeek)
	}
}

func TestGenerateCmdPostsPreferences(t *testing.T) {
	var got map[string]interface{}
	ctx, out := setupTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/planner/create-training-plan" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("user") != "3" {
			t.Errorf("user query = %q", r.URL.Query().Get("user"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"plan_id":12,"workouts":3}`))
	})

	if err := defaultCmd().Run(ctx); err != nil {
		t.Fatalf("plan generate failed: %v", err)
	}

	if got["user_id"] != float64(3) {
		t.Errorf("user_id = %v", got["user_id"])
	}
	if got["preferred_time_of_day"] != "evening" || got["frequency_per_week"] != float64(4) {
		t.Errorf("payload = %v", got)
	}
	if !strings.Contains(out.String(), `"plan_id": 12`) {
		t.Errorf("plan not printed:\n%s", out.String())
	}
}

func TestGenerateCmdRejectsInvalidPreferences(t *testing.T) {
	called := false
	ctx, _ := setupTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	cmd := defaultCmd()
	cmd.Duration = 50
	cmd.Types = nil

	err := cmd.Run(ctx)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "duration") || !strings.Contains(err.Error(), "workout type") {
		t.Errorf("error should list every problem: %v", err)
	}
	if called {
		t.Error("invalid preferences must not reach the backend")
	}
}

func TestGenerateCmdBackendError(t *testing.T) {
	ctx, _ := setupTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "planner exploded", http.StatusInternalServerError)
	})

	err := defaultCmd().Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("expected HTTP error, got %v", err)
	}
}
