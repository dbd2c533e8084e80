package route

import (
	"context"
	"sync"
	"testing"

	"github.com/DanielleFiene/redditmini/internal/otel"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Route
		wantErr bool
	}{
		{"", Feed(""), false},
		{"golang", Feed("golang"), false},
		{"r/golang", Feed("golang"), false},
		{"/r/golang/", Feed("golang"), false},
		{"  /r/Ask_Reddit ", Feed("Ask_Reddit"), false},
		{"/r/golang/comments/abc123", Route{Kind: KindDetail, Category: "golang", ItemID: "abc123"}, false},
		{"/r/golang/comments/abc123/hello-world", Route{Kind: KindDetail, Category: "golang", ItemID: "abc123", Slug: "hello-world"}, false},
		{"https://www.reddit.com/r/golang/comments/abc123/x/", Route{Kind: KindDetail, Category: "golang", ItemID: "abc123", Slug: "x"}, false},
		{"https://www.reddit.com/r/pics", Feed("pics"), false},
		{"go lang", Route{}, true},
		{"/r/golang/about", Route{}, true},
		{"/r/golang/comments/../etc", Route{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestKeyIgnoresSlugAndCase(t *testing.T) {
	a := Detail("golang", "abc", "First title")
	b := Detail("Golang", "abc", "Edited title")
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "detail:golang/abc" {
		t.Errorf("Key() = %q", a.Key())
	}
	if Feed("All").Key() != "feed:all" {
		t.Errorf("feed key = %q", Feed("All").Key())
	}
}

func TestPath(t *testing.T) {
	if got := Detail("golang", "abc", "Hello, World").Path(); got != "/r/golang/comments/abc/hello-world" {
		t.Errorf("Path() = %q", got)
	}
	if got := Feed("").Path(); got != "/" {
		t.Errorf("Path() = %q", got)
	}
}

func TestTrackerSupersedesAndCancels(t *testing.T) {
	tr := NewTracker(context.Background())

	a := tr.Activate(Feed("a"))
	if !tr.Current(a) {
		t.Fatal("first activation should be current")
	}

	b := tr.Activate(Feed("b"))
	if tr.Current(a) {
		t.Error("superseded activation must not be current")
	}
	if !tr.Current(b) {
		t.Error("newest activation should be current")
	}
	select {
	case <-a.Ctx.Done():
	default:
		t.Error("superseded activation context should be cancelled")
	}
	if b.Ctx.Err() != nil {
		t.Error("live activation context should not be cancelled")
	}
	if otel.ActivationID(b.Ctx) != b.ID || b.ID == a.ID {
		t.Errorf("activation id not carried on ctx: %q", otel.ActivationID(b.Ctx))
	}
}

// TestTrackerDropsLateResult models a slow load for "a" finishing after
// the user already moved on to "b".
func TestTrackerDropsLateResult(t *testing.T) {
	tr := NewTracker(context.Background())
	applied := ""

	apply := func(a Activation, result string) {
		if tr.Current(a) {
			applied = result
		}
	}

	a := tr.Activate(Feed("a"))
	b := tr.Activate(Feed("b"))

	apply(b, "b-result")
	apply(a, "a-result") // arrives late
	if applied != "b-result" {
		t.Errorf("applied = %q, want b-result", applied)
	}
}

func TestTrackerStopAndZeroActivation(t *testing.T) {
	tr := NewTracker(context.Background())
	if tr.Current(Activation{}) {
		t.Error("zero activation must never be current")
	}
	if _, ok := tr.Active(); ok {
		t.Error("no activation expected before Activate")
	}

	a := tr.Activate(Feed("a"))
	tr.Stop()
	if tr.Current(a) {
		t.Error("stopped activation must not be current")
	}
	if a.Ctx.Err() == nil {
		t.Error("stopped activation context should be cancelled")
	}
}

func TestTrackerConcurrentActivate(t *testing.T) {
	tr := NewTracker(context.Background())
	var wg sync.WaitGroup
	acts := make([]Activation, 50)
	for i := range acts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acts[i] = tr.Activate(Feed("x"))
		}()
	}
	wg.Wait()

	current := 0
	for _, a := range acts {
		if tr.Current(a) {
			current++
		}
	}
	if current != 1 {
		t.Errorf("%d activations current, want exactly 1", current)
	}
}
