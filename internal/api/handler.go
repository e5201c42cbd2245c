package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/mw"
	"campus-laundry-backend/internal/session"
	"campus-laundry-backend/internal/store"
)

// Sessions is what the handlers need from the session manager.
type Sessions interface {
	mw.SessionLookup
	Login(ctx context.Context, username, password, role string) (session.Session, error)
	Logout(token string)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store           store.Store
	sessions        Sessions
	webpush         *webpush.Options
	metrics         *metrics.Metrics
	log             zerolog.Logger
	returnAfterDays int
	now             func() time.Time
}

// NewHandler creates a new API handler. webpushOptions may be nil when push
// is not configured.
func NewHandler(s store.Store, sessions Sessions, webpushOptions *webpush.Options, m *metrics.Metrics, log zerolog.Logger, returnAfterDays int) *Handler {
	return &Handler{
		store:           s,
		sessions:        sessions,
		webpush:         webpushOptions,
		metrics:         m,
		log:             log,
		returnAfterDays: returnAfterDays,
		now:             time.Now,
	}
}

// Notice is the short confirmation a page shows after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, laundry.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), laundry.ErrInvalidInput.Error()+": ")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, laundry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, laundry.ErrInvalidTransition), errors.Is(err, laundry.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrUnknownSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bind decodes the request body (JSON or form) into dst.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBind(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", laundry.ErrInvalidInput)
	}
	return nil
}

// currentSession is only called behind mw.RequireSession.
func currentSession(c *gin.Context) session.Session {
	s, _ := mw.CurrentSession(c)
	return s
}

// Health reports whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NotFound answers any route that does not exist.
func (h *Handler) NotFound(c *gin.Context) {
	h.log.Warn().Str("path", c.Request.URL.Path).Msg("attempt to access non-existent route")
	c.JSON(http.StatusNotFound, gin.H{"error": "page not found", "path": c.Request.URL.Path})
}
