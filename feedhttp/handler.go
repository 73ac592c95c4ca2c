package feedhttp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pullfeed/component"
	apperrors "github.com/kbukum/pullfeed/errors"
	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/server"
	"github.com/kbukum/pullfeed/sse"
	"github.com/kbukum/pullfeed/validation"
)

// EndReachedRequest is the optional body of POST /feed/end-reached.
type EndReachedRequest struct {
	DistanceFromEnd int `json:"distance_from_end"`
}

// EndReachedResponse acknowledges an end-reached signal. The pull itself
// happens asynchronously; its results arrive on the event stream.
type EndReachedResponse struct {
	Accepted      bool   `json:"accepted"`
	MoreAvailable bool   `json:"more_available"`
	Version       uint64 `json:"version"`
}

// Handler exposes one feed over HTTP. As a component it attaches a Surface
// to the feed on Start and detaches it on Stop.
type Handler[T any, K comparable] struct {
	feed      *feed.Feed[T, K]
	hub       *sse.Hub
	log       *logger.Logger
	keepAlive time.Duration

	mu     sync.Mutex
	detach func()
}

var (
	_ component.Component   = (*Handler[struct{}, int])(nil)
	_ component.Describable = (*Handler[struct{}, int])(nil)
)

// Option configures a Handler.
type Option func(*options)

type options struct {
	keepAlive time.Duration
}

// WithKeepAlive sets the event stream keep-alive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

// NewHandler creates a Handler for f publishing through hub.
func NewHandler[T any, K comparable](f *feed.Feed[T, K], hub *sse.Hub, log *logger.Logger, opts ...Option) *Handler[T, K] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.WithComponent("feedhttp")
	}
	return &Handler[T, K]{
		feed:      f,
		hub:       hub,
		log:       log.WithFields(logger.Fields(logger.FieldFeed, f.Name())),
		keepAlive: o.keepAlive,
	}
}

// Register mounts the feed routes on r.
func (h *Handler[T, K]) Register(r gin.IRouter) {
	r.GET("/feed", h.getFeed)
	r.POST("/feed/end-reached", h.endReached)
	r.GET("/feed/events", h.events)
}

func (h *Handler[T, K]) getFeed(c *gin.Context) {
	snap := h.feed.Snapshot()
	if snap.Items == nil {
		snap.Items = []T{}
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler[T, K]) endReached(c *gin.Context) {
	if !h.feed.Mounted() {
		server.RespondWithError(c, apperrors.FeedUnavailable(h.feed.Name()))
		return
	}

	var req EndReachedRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				server.RespondWithError(c, apperrors.PayloadTooLarge(tooLarge.Limit))
				return
			}
			server.RespondWithError(c, apperrors.InvalidFormat("body", `{"distance_from_end": <int>}`).WithCause(err))
			return
		}
	}
	if appErr := validation.New().Min("distance_from_end", req.DistanceFromEnd, 0).Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	h.feed.OnEndReached(feed.EndReachedInfo{DistanceFromEnd: req.DistanceFromEnd})

	snap := h.feed.Snapshot()
	server.RespondAccepted(c, EndReachedResponse{
		Accepted:      true,
		MoreAvailable: snap.MoreAvailable,
		Version:       snap.Version,
	})
}

func (h *Handler[T, K]) events(c *gin.Context) {
	sse.ServeSSE(h.hub, c.Writer, c.Request, NewClientID(h.feed.Name()), sse.StreamOptions{
		KeepAlive: h.keepAlive,
		Initial: func() []sse.Event {
			ev, err := SnapshotEvent(h.feed.Snapshot())
			if err != nil {
				h.log.Warn("Snapshot not sent", logger.ErrorFields("encode_snapshot", err))
				return nil
			}
			return []sse.Event{ev}
		},
	})
}

// Name returns the component name.
func (h *Handler[T, K]) Name() string { return "feedhttp:" + h.feed.Name() }

// Start attaches the broadcasting surface to the feed.
func (h *Handler[T, K]) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detach != nil {
		return fmt.Errorf("%s already started", h.Name())
	}
	h.detach = h.feed.Attach(NewSurface[T](h.feed.Name(), h.hub, h.log))
	return nil
}

// Stop detaches the surface.
func (h *Handler[T, K]) Stop(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detach != nil {
		h.detach()
		h.detach = nil
	}
	return nil
}

// Health reports whether changes are being published and how many
// stream clients are connected.
func (h *Handler[T, K]) Health(_ context.Context) component.Health {
	h.mu.Lock()
	attached := h.detach != nil
	h.mu.Unlock()

	if !attached {
		return component.Health{Name: h.Name(), Status: component.StatusDegraded, Message: "surface not attached"}
	}
	return component.Health{
		Name:    h.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d stream clients", h.hub.ClientCount()),
	}
}

// Describe returns summary info for startup output.
func (h *Handler[T, K]) Describe() component.Description {
	return component.Description{
		Name:    "Feed API " + h.feed.Name(),
		Type:    "handler",
		Details: "GET /feed, POST /feed/end-reached, GET /feed/events",
	}
}
