package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazypower/habits/internal/commands"
	"github.com/lazypower/habits/internal/config"
	apperr "github.com/lazypower/habits/internal/errors"
)

// run executes the root command against a data dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	configPath, dataDir, invokeURL = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("habits %v: %v", args, err)
	}
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")
	if !strings.HasPrefix(out, "habits dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestMigrate(t *testing.T) {
	out := mustRun(t, t.TempDir(), "migrate")
	if !strings.Contains(out, "schema v4 (latest v4)") {
		t.Errorf("migrate output = %q", out)
	}
}

func TestHabitWorkflow(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "habit", "add", "run", "5")
	if !strings.Contains(out, "run") {
		t.Fatalf("add output = %q", out)
	}

	out = mustRun(t, dir, "habit", "done", "1")
	if !strings.Contains(out, "run: +5 -> 5 points") {
		t.Errorf("done output = %q", out)
	}

	out = mustRun(t, dir, "records", "list")
	if !strings.Contains(out, "+5") {
		t.Errorf("records output = %q", out)
	}

	out = mustRun(t, dir, "status")
	if !strings.Contains(out, "points:  5") || !strings.Contains(out, "league:  zhest") {
		t.Errorf("status output = %q", out)
	}

	out = mustRun(t, dir, "records", "reset")
	if !strings.Contains(out, "Deleted 1 records.") {
		t.Errorf("reset output = %q", out)
	}

	out = mustRun(t, dir, "habit", "rm", "1")
	if !strings.Contains(out, "No habits.") {
		t.Errorf("rm output = %q", out)
	}
}

func TestHabitAddRejectsZeroPoints(t *testing.T) {
	_, err := run(t, t.TempDir(), "habit", "add", "nothing", "0")
	if !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestHabitDoneUnknown(t *testing.T) {
	_, err := run(t, t.TempDir(), "habit", "done", "9")
	if !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestStatusWithoutUser(t *testing.T) {
	out := mustRun(t, t.TempDir(), "status")
	if !strings.Contains(out, "none yet") {
		t.Errorf("status output = %q", out)
	}
}

func TestInvokeLocal(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "invoke", "ensure_user")
	if !strings.Contains(out, `"points": 0`) {
		t.Errorf("ensure_user output = %q", out)
	}

	out = mustRun(t, dir, "invoke", "update_user_points", `{"points": 12}`)
	if strings.TrimSpace(out) != "12" {
		t.Errorf("update_user_points output = %q", out)
	}

	_, err := run(t, dir, "invoke", "nope")
	if !errors.Is(err, commands.ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestInvokeRemote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/invoke/get_habits" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"id":1,"habit_name":"walk","points":3}]`))
	}))
	defer ts.Close()

	out := mustRun(t, t.TempDir(), "invoke", "--url", ts.URL, "get_habits")
	if !strings.Contains(out, `"habit_name": "walk"`) {
		t.Errorf("remote output = %q", out)
	}
}

func TestDotEnvOverridesDBPath(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other.sqlite")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HABITS_DB="+other+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HABITS_DB") })

	out := mustRun(t, dir, "migrate")
	if !strings.Contains(out, other) {
		t.Errorf("migrate output = %q, want path %s", out, other)
	}
}

func TestCorruptDatabaseFails(t *testing.T) {
	dir := t.TempDir()
	garbage := bytes.Repeat([]byte("not a database "), 512)
	if err := os.WriteFile(filepath.Join(dir, "db.sqlite"), garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, dir, "status")
	if err == nil {
		t.Fatal("expected error opening garbage database")
	}
	if kind := apperr.Kind(err); kind != "StoreCorrupt" && kind != "StoreUnavailable" {
		t.Errorf("kind = %q, want StoreCorrupt or StoreUnavailable (err: %v)", kind, err)
	}
}

func TestPenaltyFunc(t *testing.T) {
	aware := penaltyFunc(config.DecayConfig{LeagueAware: true, Penalty: 5})
	if aware(600) != 20 {
		t.Errorf("league-aware penalty at 600 = %d, want 20", aware(600))
	}
	flat := penaltyFunc(config.DecayConfig{LeagueAware: false, Penalty: 5})
	if flat(3000) != 5 {
		t.Errorf("flat penalty = %d, want 5", flat(3000))
	}
}
