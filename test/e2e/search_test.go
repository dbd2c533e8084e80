package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

// buildBinary builds ./cmd/<name> for testing and returns its path.
func buildBinary(t *testing.T, name string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), name)

	// Get the project root directory
	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// Assume we are in test/e2e, go up 2 levels
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/"+name)
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// sendKeys types s into the program's terminal. Console.Send would write to
// the console's own pty, which the program never reads.
func sendKeys(t *testing.T, ptmx *os.File, s string) {
	t.Helper()
	if _, err := ptmx.WriteString(s); err != nil {
		t.Fatalf("failed to send %q: %v", s, err)
	}
}

// testEnv points HOME at a fresh directory and the client at the fake
// upstream so nothing touches real data or the network.
func testEnv(homeDir, baseURL string) []string {
	return append(os.Environ(),
		"HOME="+homeDir,
		"REDDITMINI_CONFIG=",
		"REDDITMINI_BASE_URL="+baseURL,
		"REDDITMINI_MIN_INTERVAL=0s",
	)
}

func TestE2E_SearchNavigates(t *testing.T) {
	binPath := buildBinary(t, "redditmini")
	srv := newFakeReddit()
	defer srv.Close()

	homeDir := t.TempDir()
	cmd := exec.Command(binPath, "-route", "golang")
	cmd.Env = testEnv(homeDir, srv.URL)

	// Create PTY
	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start pty: %v", err)
	}
	defer func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
	}()

	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: 140, Rows: 40}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	// Capture output for debugging
	var outputBuf bytes.Buffer

	console, err := expect.NewConsole(
		expect.WithStdin(ptmx),
		expect.WithStdout(&outputBuf),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	// 1. Wait for the starting feed
	t.Log("Waiting for the golang feed...")
	if _, err := console.ExpectString("Fixture Post One"); err != nil {
		if logs, err := os.ReadFile(filepath.Join(homeDir, ".redditmini", "events.jsonl")); err == nil {
			t.Logf("events.jsonl:\n%s", logs)
		}
		t.Fatalf("Startup failed: feed not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 2. Sidebars load independently
	if _, err := console.ExpectString("FixtureCommunity"); err != nil {
		t.Fatalf("popular sidebar not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 3. Open the search box and go to another category
	time.Sleep(300 * time.Millisecond) // Allow UI to stabilize
	sendKeys(t, ptmx, "/")
	if _, err := console.ExpectString("r/pics or a post URL"); err != nil {
		t.Fatalf("search prompt not found: %v\nScreen:\n%s", err, outputBuf.String())
	}
	sendKeys(t, ptmx, "pics\r")

	// 4. Verify the new feed
	if _, err := console.ExpectString("Pics Post"); err != nil {
		t.Fatalf("pics feed not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// Send 'q' to quit
	sendKeys(t, ptmx, "q")

	done := make(chan error)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
		t.Log("Process exited successfully")
	case <-time.After(2 * time.Second):
		t.Error("Process did not exit after 'q'")
	}

	if _, err := os.Stat(filepath.Join(homeDir, ".redditmini", "events.jsonl")); err != nil {
		t.Errorf("event log not written: %v", err)
	}
}

func TestE2E_RmctlFeed(t *testing.T) {
	binPath := buildBinary(t, "rmctl")
	srv := newFakeReddit()
	defer srv.Close()

	cmd := exec.Command(binPath, "feed", "golang")
	cmd.Env = testEnv(t.TempDir(), srv.URL)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("rmctl feed failed: %v\n%s", err, out)
	}

	var state struct {
		Status string `json:"status"`
		Data   []struct {
			Title     string `json:"title"`
			AvatarURL string `json:"avatar_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &state); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if state.Status != "ready" || len(state.Data) != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.Data[0].AvatarURL != "https://i.test/fixture.png" {
		t.Errorf("avatar = %q", state.Data[0].AvatarURL)
	}
}

func TestE2E_RmctlDetailNotFound(t *testing.T) {
	binPath := buildBinary(t, "rmctl")
	srv := newFakeReddit()
	defer srv.Close()

	// unknown thread path: the fake returns 404
	cmd := exec.Command(binPath, "detail", "golang", "missing")
	cmd.Env = testEnv(t.TempDir(), srv.URL)
	out, err := cmd.Output()
	if err == nil {
		t.Fatalf("expected non-zero exit for a failed load, got:\n%s", out)
	}

	var state struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(out, &state); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if state.Status != "failed" || state.Error == "" {
		t.Errorf("unexpected state: %+v", state)
	}
}
