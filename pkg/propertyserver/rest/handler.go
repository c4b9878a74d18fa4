package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/logger"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// DefaultPageSize is used when a page request has no pageSize parameter.
const DefaultPageSize = 100

// RequestIDHeader carries the request ID. One is generated when a request
// arrives without it.
const RequestIDHeader = "X-Request-ID"

// Handler serves a property server over HTTP.
type Handler struct {
	server propertyserver.PropertyServer
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewHandler returns an http.Handler exposing server on the package routes.
func NewHandler(server propertyserver.PropertyServer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		server: server,
		logger: log.With(zap.String("component", "rest_handler")),
		mux:    http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /assets/{guid}", h.asset)
	h.mux.HandleFunc("GET /owners/{guid}/{kind}/count", h.count)
	h.mux.HandleFunc("GET /owners/{guid}/{kind}", h.page)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)
	h.mux.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
}

// scoped tags the request context with the owner and, when given, the kind
// being read.
func scoped(r *http.Request, kind string) *http.Request {
	ctx := logger.WithAssetGUID(r.Context(), r.PathValue("guid"))
	if kind != "" {
		ctx = logger.WithIterator(ctx, kind)
	}
	return r.WithContext(ctx)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.server.Health(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.reply(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) asset(w http.ResponseWriter, r *http.Request) {
	r = scoped(r, "")
	asset, err := h.server.GetAsset(r.Context(), r.PathValue("guid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.reply(w, r, asset)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	r = scoped(r, r.PathValue("kind"))
	n, err := h.server.CountElements(r.Context(), r.PathValue("guid"), beans.Kind(r.PathValue("kind")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.reply(w, r, countResponse{Count: n})
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	r = scoped(r, r.PathValue("kind"))
	startFrom, err := intParam(r, "startFrom", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pageSize, err := intParam(r, "pageSize", DefaultPageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	elements, err := h.server.FetchElements(r.Context(), r.PathValue("guid"), beans.Kind(r.PathValue("kind")), startFrom, pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if elements == nil {
		elements = []propertyserver.RawElement{}
	}
	logger.FromContext(r.Context(), h.logger).Debug("serving page",
		zap.Int("start", startFrom), zap.Int("size", len(elements)))
	h.reply(w, r, pageResponse{Elements: elements})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ocferrors.Newf(ocferrors.ErrorTypeValidation, "%s must be an integer", name).
			WithDetail("value", v)
	}
	return n, nil
}

// reply encodes v before writing anything, so an encoding failure can still be
// reported as a 500.
func (h *Handler) reply(w http.ResponseWriter, r *http.Request, v interface{}) {
	buf := json.GetBuffer()
	defer json.PutBuffer(buf)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		h.fail(w, r, ocferrors.Wrap(err, ocferrors.ErrorTypeInternal, "failed to encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContext(r.Context(), h.logger).Warn("failed to write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.logger).Error("request failed",
			zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	msg := err.Error()
	var oe *ocferrors.Error
	if errors.As(err, &oe) {
		msg = oe.Message
	}
	http.Error(w, msg, status)
}

// StatusFor maps an error to the HTTP status the handler answers with.
func StatusFor(err error) int {
	switch ocferrors.TypeOf(err) {
	case ocferrors.ErrorTypeValidation, ocferrors.ErrorTypeInvalidParameter:
		return http.StatusBadRequest
	case ocferrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case ocferrors.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ocferrors.ErrorTypeConnection:
		return http.StatusServiceUnavailable
	case ocferrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
