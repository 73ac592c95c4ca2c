package demo

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pullfeed/source"
)

// Post is a demo feed item.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	Live      bool      `json:"live,omitempty"`
}

// PostKey is the identity of a post across revisions.
func PostKey(p Post) string { return p.ID }

// Text formats a post as a headline and a byline.
func Text(p Post) (main, secondary string) {
	byline := fmt.Sprintf("@%s · %s", p.Author, p.CreatedAt.Format("15:04:05"))
	if p.Revision > 0 {
		byline += fmt.Sprintf(" · edited ×%d", p.Revision)
	}
	if p.Live {
		byline = "● " + byline
	}
	return p.Body, byline
}

var (
	authors = []string{"ada", "grace", "linus", "ken", "rob", "barbara", "edsger", "margaret"}
	words   = []string{
		"pull", "stream", "batch", "scroll", "token", "commit", "buffer", "source",
		"footer", "prefix", "latency", "session", "queue", "render", "snapshot", "feed",
	}
)

// ErrDemoFailure is the error a scroll stream fails with when FailAfter is set.
var ErrDemoFailure = fmt.Errorf("demo: upstream failure")

type generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock func() time.Time
}

func newGenerator(seed uint64, clock func() time.Time) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), clock: clock}
}

func (g *generator) post() Post {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 4 + g.rng.IntN(8)
	body := make([]string, n)
	for i := range body {
		body[i] = words[g.rng.IntN(len(words))]
	}
	return Post{
		ID:        uuid.NewString(),
		Author:    authors[g.rng.IntN(len(authors))],
		Body:      strings.Join(body, " "),
		CreatedAt: g.clock(),
	}
}

func (g *generator) pick(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// scrollStream is the synchronous scroll source before latency is added.
type scrollStream struct {
	cfg     Config
	gen     *generator
	emitted []Post
	fresh   int
	ended   error
	// fresh count at which the last correction was sent
	lastCorrection int
}

func (s *scrollStream) read(abort error, cb source.Callback[Post]) {
	if abort != nil {
		s.ended = abort
		cb(source.ErrEnd, Post{})
		return
	}
	if s.ended != nil {
		cb(s.ended, Post{})
		return
	}

	if s.cfg.CorrectionEvery > 0 && s.fresh > 0 && s.fresh%s.cfg.CorrectionEvery == 0 &&
		s.lastCorrection != s.fresh {
		cb(nil, s.correction())
		return
	}

	switch {
	case s.cfg.FailAfter > 0 && s.fresh >= s.cfg.FailAfter:
		s.ended = ErrDemoFailure
		cb(s.ended, Post{})
		return
	case s.fresh >= s.cfg.Total:
		s.ended = source.ErrEnd
		cb(s.ended, Post{})
		return
	}

	p := s.gen.post()
	s.emitted = append(s.emitted, p)
	s.fresh++
	cb(nil, p)
}

func (s *scrollStream) correction() Post {
	// Revise one of the last few posts: sometimes already committed,
	// sometimes still buffered in the current batch.
	window := min(len(s.emitted), 5)
	idx := len(s.emitted) - 1 - s.gen.pick(window)
	p := s.emitted[idx]
	p.Revision++
	p.Body = p.Body + " (edited)"
	s.emitted[idx] = p
	s.lastCorrection = s.fresh
	return p
}

// Posts returns a factory of finite scroll streams. Every bind starts a
// new stream of cfg.Total posts, replies delayed by cfg.Latency.
func Posts(cfg Config) source.Factory[Post] {
	return postsWithClock(cfg, time.Now)
}

func postsWithClock(cfg Config, clock func() time.Time) source.Factory[Post] {
	cfg.ApplyDefaults()
	return func() source.Source[Post] {
		s := &scrollStream{cfg: cfg, gen: newGenerator(cfg.Seed, clock)}
		var src source.Source[Post] = s.read
		if cfg.Latency > 0 {
			src = source.Async(src, cfg.Latency)
		}
		return src
	}
}
