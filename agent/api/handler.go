// Package api binds the supervisor to HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	statex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/state"
)

const (
	defaultMaxRequestBodySize = 1 << 20

	HeaderThreadID = "X-Thread-ID"
)

// Service is the supervisor surface exposed over HTTP.
type Service interface {
	ProcessRequest(ctx context.Context, req contractx.Request) contractx.Response
	GetProfile(ctx context.Context, customerID string) contractx.ProfileResult
	PropagateProfile(ctx context.Context, customerID string, prefs contractx.Preferences) error
	VerifyCustomer(ctx context.Context, customerID string) contractx.Verification
}

type Option func(*Handler)

func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

func WithNamespace(namespace string) Option {
	return func(h *Handler) {
		if ns := strings.TrimSpace(namespace); ns != "" {
			h.namespace = ns
		}
	}
}

// WithThreadIDs overrides how thread ids are minted for requests without one.
func WithThreadIDs(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newThreadID = fn
		}
	}
}

type Handler struct {
	svc         Service
	profiles    memoryx.Store
	checkpoints statex.Store
	namespace   string
	maxBodySize int64
	newThreadID func() string
}

// NewHandler creates a Handler. profiles and checkpoints back the admin
// endpoints; a nil checkpoints store disables thread deletion.
func NewHandler(svc Service, profiles memoryx.Store, checkpoints statex.Store, opts ...Option) *Handler {
	h := &Handler{
		svc:         svc,
		profiles:    profiles,
		checkpoints: checkpoints,
		namespace:   contractx.ProfileNamespace,
		maxBodySize: defaultMaxRequestBodySize,
		newThreadID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter mounts the handler behind the common middleware stack.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/support", h.HandleSupport)

		r.Route("/profiles/{customerID}", func(r chi.Router) {
			r.Get("/", h.HandleGetProfile)
			r.Put("/", h.HandlePutProfile)
			r.Delete("/", h.HandleDeleteProfile)
		})

		r.Get("/customers/{customerID}/verification", h.HandleVerifyCustomer)
		r.Delete("/threads/{threadID}", h.HandleDeleteThread)
	})
}

type supportRequest struct {
	Query      string `json:"query"`
	CustomerID string `json:"customer_id,omitempty"`
	ThreadID   string `json:"thread_id,omitempty"`
}

// HandleSupport runs one orchestration cycle. Every structured Response,
// including routing and domain errors, is written with 200.
func (h *Handler) HandleSupport(w http.ResponseWriter, r *http.Request) {
	var req supportRequest
	if !h.decode(w, r, &req) {
		return
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if threadID == "" {
		threadID = h.newThreadID()
	}
	w.Header().Set(HeaderThreadID, threadID)

	resp := h.svc.ProcessRequest(r.Context(), contractx.Request{
		Query:      req.Query,
		CustomerID: req.CustomerID,
		ThreadID:   threadID,
	})
	JSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.svc.GetProfile(r.Context(), chi.URLParam(r, "customerID")))
}

func (h *Handler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	var prefs contractx.Preferences
	if !h.decode(w, r, &prefs) {
		return
	}

	if err := h.svc.PropagateProfile(r.Context(), customerID, prefs); err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("profile propagation failed")
		Error(w, statusFor(err), "Failed to update user profile")
		return
	}
	JSON(w, http.StatusOK, h.svc.GetProfile(r.Context(), customerID))
}

func (h *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if h.profiles == nil {
		Error(w, http.StatusNotFound, "profile store is not configured")
		return
	}

	if err := h.profiles.Delete(r.Context(), h.namespace, customerID); err != nil {
		if errors.Is(err, memoryx.ErrInvalidKey) {
			Error(w, http.StatusBadRequest, "customer id is required")
			return
		}
		log.Error().Err(err).Str("customer_id", customerID).Msg("profile delete failed")
		Error(w, http.StatusInternalServerError, "Failed to delete user profile")
		return
	}
	log.Info().Str("customer_id", customerID).Msg("profile deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleVerifyCustomer(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.svc.VerifyCustomer(r.Context(), chi.URLParam(r, "customerID")))
}

func (h *Handler) HandleDeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if h.checkpoints == nil {
		Error(w, http.StatusNotFound, "checkpoints are disabled")
		return
	}

	if err := h.checkpoints.Delete(r.Context(), threadID); err != nil {
		if errors.Is(err, statex.ErrInvalidThread) {
			Error(w, http.StatusBadRequest, "thread id is required")
			return
		}
		log.Error().Err(err).Str("thread_id", threadID).Msg("checkpoint delete failed")
		Error(w, http.StatusInternalServerError, "Failed to delete thread")
		return
	}
	log.Info().Str("thread_id", threadID).Msg("thread deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func statusFor(err error) int {
	switch contractx.KindOf(err) {
	case contractx.ErrorKindValidation:
		return http.StatusBadRequest
	case contractx.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
