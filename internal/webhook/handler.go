package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

const defaultMaxBodyBytes = 50 << 20

// Options wires the handler collaborators. Verifier and Notifier are optional.
type Options struct {
	Store        ports.CallbackStore
	Verifier     *Verifier
	Notifier     ports.Notifier
	Logger       *slog.Logger
	MaxBodyBytes int64
	Now          func() time.Time
}

// Handler receives research callbacks and exposes what was stored.
type Handler struct {
	store    ports.CallbackStore
	verifier *Verifier
	notifier ports.Notifier
	log      *slog.Logger
	maxBody  int64
	now      func() time.Time
	started  time.Time
}

// NewHandler builds a handler; the uptime clock starts now.
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		store:    opts.Store,
		verifier: opts.Verifier,
		notifier: opts.Notifier,
		log:      opts.Logger,
		maxBody:  opts.MaxBodyBytes,
		now:      opts.Now,
		started:  opts.Now(),
	}
}

// NewRouter returns a gin engine with recovery, request logging and all routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))
	h.Register(r)
	return r
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/webhook", h.Receive)
	r.GET("/health", h.Health)
	r.GET("/", h.Index)
	r.GET("/logs", h.Logs)
}

// Receive stores the full request snapshot.
func (h *Handler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "Payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot read body", "message": err.Error()})
		return
	}

	if h.verifier != nil {
		if err := h.verifier.Verify(raw, c.Request.Header); err != nil {
			h.log.Warn("rejected webhook", "error", err, "ip", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid signature"})
			return
		}
	}

	body, err := decodeBody(c.ContentType(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Malformed body", "message": err.Error()})
		return
	}

	record := domain.CallbackRecord{
		Timestamp: h.now().UTC(),
		Headers:   c.Request.Header.Clone(),
		Body:      body,
		Query:     c.Request.URL.Query(),
		Method:    c.Request.Method,
		URL:       c.Request.URL.RequestURI(),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	filename, err := h.store.Save(c.Request.Context(), record)
	if err != nil {
		h.log.Error("store webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	event := eventType(body)
	h.log.Info("webhook saved", "filename", filename, "location", h.store.Location(), "event", event)
	h.notify(c.Request.Context(), fmt.Sprintf("Webhook %s saved as %s", event, filename))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Webhook received and data saved",
		"filename":  filename,
		"timestamp": record.Timestamp,
	})
}

// Health reports liveness and uptime in seconds.
func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": now.UTC(),
		"uptime":    now.Sub(h.started).Seconds(),
	})
}

// Index describes the service.
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Deep Research Webhook Callback Server",
		"endpoints": gin.H{
			"POST /webhook": "Receive webhook data from deep research",
			"GET /health":   "Health check endpoint",
			"GET /logs":     "List saved webhook data files",
		},
		"instructions": []string{
			"Send POST requests to /webhook to test webhook functionality",
			"All received data will be saved to " + h.store.Location(),
			"Check the service log for incoming requests",
		},
	})
}

// Logs lists stored callbacks, newest first.
func (h *Handler) Logs(c *gin.Context) {
	files, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("list webhooks", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to read logs directory",
			"message": err.Error(),
		})
		return
	}
	if files == nil {
		files = []domain.CallbackFile{}
	}

	c.JSON(http.StatusOK, gin.H{
		"logsDir":    h.store.Location(),
		"files":      files,
		"totalFiles": len(files),
	})
}

func (h *Handler) notify(ctx context.Context, text string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(ctx, text); err != nil {
		h.log.Warn("notify webhook", "error", err)
	}
}

func decodeBody(contentType string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	switch contentType {
	case "application/json":
		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return body, nil
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, fmt.Errorf("decode form: %w", err)
		}
		return values, nil
	default:
		return string(raw), nil
	}
}

func eventType(body any) string {
	if m, ok := body.(map[string]any); ok {
		if t, ok := m["type"].(string); ok && t != "" {
			return t
		}
	}
	return "callback"
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
