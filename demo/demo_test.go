package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/sched"
	"github.com/kbukum/pullfeed/source"
)

func fixedClock() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func drainSync(t *testing.T, cfg Config) ([]Post, error) {
	t.Helper()
	cfg.ApplyDefaults()
	s := &scrollStream{cfg: cfg, gen: newGenerator(cfg.Seed, fixedClock)}
	return source.Collect(context.Background(), s.read)
}

func TestScrollStream(t *testing.T) {
	tests := []struct {
		name            string
		cfg             Config
		wantReplies     int
		wantCorrections int
		wantErr         error
	}{
		{"corrections interleaved", Config{Total: 10, CorrectionEvery: 3}, 13, 3, nil},
		{"correction before end on boundary", Config{Total: 6, CorrectionEvery: 3}, 8, 2, nil},
		{"failure after n", Config{Total: 10, CorrectionEvery: 100, FailAfter: 4}, 4, 0, ErrDemoFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := drainSync(t, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(got) != tt.wantReplies {
				t.Errorf("replies = %d, want %d", len(got), tt.wantReplies)
			}
			seen := map[string]bool{}
			corrections := 0
			for _, p := range got {
				if p.Revision > 0 {
					corrections++
					if !seen[p.ID] {
						t.Errorf("correction %s precedes its original", p.ID)
					}
				}
				seen[p.ID] = true
			}
			if corrections != tt.wantCorrections {
				t.Errorf("corrections = %d, want %d", corrections, tt.wantCorrections)
			}
		})
	}
}

func TestScrollStreamAbort(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	s := &scrollStream{cfg: cfg, gen: newGenerator(1, fixedClock)}

	var end error
	s.read(source.ErrEnd, func(e error, _ Post) { end = e })
	if !source.IsEnd(end) {
		t.Fatalf("abort reply = %v", end)
	}
	s.read(nil, func(e error, _ Post) { end = e })
	if end == nil {
		t.Error("read after abort should end")
	}
}

func TestPostsFactoryFreshStreams(t *testing.T) {
	factory := postsWithClock(Config{Total: 3, CorrectionEvery: 100, Latency: time.Millisecond}, fixedClock)
	a, err := source.Collect(context.Background(), factory())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	b, err := source.Collect(context.Background(), factory())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("lengths = %d, %d", len(a), len(b))
	}
	if a[0].ID == b[0].ID {
		t.Error("each bind should yield new post IDs")
	}
	if a[0].Body != b[0].Body {
		t.Error("same seed should yield the same bodies")
	}
}

func TestText(t *testing.T) {
	p := Post{Author: "ada", Body: "hello", CreatedAt: fixedClock(), Revision: 2, Live: true}
	main, secondary := Text(p)
	if main != "hello" {
		t.Errorf("main = %q", main)
	}
	if secondary != "● @ada · 03:04:05 · edited ×2" {
		t.Errorf("secondary = %q", secondary)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Total: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("negative total should fail")
	}
	cfg = Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults: %v", err)
	}
}

func TestLivePublishesToCurrentStream(t *testing.T) {
	l := NewLive(Config{LiveInterval: time.Hour})
	if l.Publish() {
		t.Fatal("publish without a bound stream should be dropped")
	}

	first := l.Factory()()
	if !l.Publish() {
		t.Fatal("publish should reach the bound stream")
	}
	var got Post
	first(nil, func(_ error, p Post) { got = p })
	if !got.Live || got.ID == "" {
		t.Errorf("got %+v", got)
	}

	second := l.Factory()()
	var end error
	first(nil, func(e error, _ Post) { end = e })
	if !source.IsEnd(end) {
		t.Errorf("rebinding should end the previous stream, got %v", end)
	}

	l.Publish()
	second(nil, func(_ error, p Post) { got = p })
	if l.Published() != 2 {
		t.Errorf("published = %d", l.Published())
	}
}

func TestLiveLifecycle(t *testing.T) {
	ctx := context.Background()
	l := NewLive(Config{LiveInterval: 5 * time.Millisecond})
	src := l.Factory()()

	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	received := make(chan Post, 1)
	src(nil, func(_ error, p Post) { received <- p })
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("no live post within 2s")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := l.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := l.Health(ctx); h.Status != "degraded" {
		t.Errorf("health after stop = %+v", h)
	}
}

func TestDemoFeedEndToEnd(t *testing.T) {
	loop := sched.NewLoop("test")
	ctx := context.Background()
	if err := loop.Start(ctx); err != nil {
		t.Fatalf("loop start: %v", err)
	}
	defer loop.Stop(ctx)

	f, err := feed.New(feed.Config{InitialAmount: 4, PullAmount: 5}, PostKey,
		feed.WithScheduler(loop),
		feed.WithLogger(logger.Nop()),
		feed.WithScrollSource(postsWithClock(Config{Total: 9, CorrectionEvery: 4, Latency: time.Millisecond}, fixedClock)),
	)
	if err != nil {
		t.Fatalf("feed.New: %v", err)
	}
	f.Mount()
	defer f.Unmount()

	deadline := time.Now().Add(5 * time.Second)
	for f.Snapshot().MoreAvailable {
		if time.Now().After(deadline) {
			t.Fatalf("feed not exhausted, snapshot has %d items", f.Snapshot().Len())
		}
		f.OnEndReached(feed.EndReachedInfo{})
		time.Sleep(5 * time.Millisecond)
	}

	snap := f.Snapshot()
	if snap.Len() != 9 {
		t.Fatalf("items = %d, want 9 distinct posts", snap.Len())
	}
	ids := map[string]bool{}
	for _, p := range snap.Items {
		if ids[p.ID] {
			t.Errorf("duplicate id %s", p.ID)
		}
		ids[p.ID] = true
	}
}
