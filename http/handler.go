package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/drivedav"
)

// WebDAV extension methods routed by chi.
const (
	MethodPropfind = "PROPFIND"
	MethodMkcol    = "MKCOL"
	MethodCopy     = "COPY"
	MethodMove     = "MOVE"
)

// allowedMethods is advertised in the Allow header of every response.
const allowedMethods = "OPTIONS, GET, HEAD, PUT, DELETE, PROPFIND, MKCOL, COPY, MOVE"

func init() {
	for _, m := range []string{MethodPropfind, MethodMkcol, MethodCopy, MethodMove} {
		chi.RegisterMethod(m)
	}
}

type Service interface {
	Get(ctx context.Context, p string) (drivedav.Info, io.ReadSeekCloser, error)
	Put(ctx context.Context, p string, body io.Reader) (bool, error)
	Delete(ctx context.Context, p string) (int, error)
	Mkcol(ctx context.Context, p string) error
	EnsureCollection(ctx context.Context, p string) error
	Copy(ctx context.Context, src, dst string, opts drivedav.CopyOptions) (bool, error)
	Move(ctx context.Context, src, dst string, overwrite bool) (bool, error)
	Propfind(ctx context.Context, p string, depth drivedav.Depth) ([]drivedav.Info, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Authenticator identifies callers. nil serves every request anonymously.
	Authenticator drivedav.Authenticator
	// Realm is sent in the WWW-Authenticate challenge.
	Realm string
	// PerUserRoot confines each identity to a collection named after it.
	PerUserRoot bool
	// MaxUploadSize caps PUT bodies in bytes. 0 means no limit.
	MaxUploadSize int64
	CORS          CORSConfig
	// Metrics, when set, instruments every request.
	Metrics *Metrics
}

// Handler serves the WebDAV verbs on top of a Service.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler that dispatches every supported verb on
// every path. OPTIONS is answered before authentication; everything else
// goes through the auth and scope middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(DAVHeaders)
	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}
	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	r.MethodNotAllowed(h.handleMethodNotAllowed)

	for _, pattern := range []string{"/", "/*"} {
		r.Options(pattern, h.handleOptions)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Authenticator, h.config.Realm))
		r.Use(h.scopeMiddleware)

		for _, pattern := range []string{"/", "/*"} {
			r.Get(pattern, h.handleGet)
			r.Head(pattern, h.handleGet)
			r.Put(pattern, h.handlePut)
			r.Delete(pattern, h.handleDelete)
			r.Method(MethodMkcol, pattern, http.HandlerFunc(h.handleMkcol))
			r.Method(MethodPropfind, pattern, http.HandlerFunc(h.handlePropfind))
			r.Method(MethodCopy, pattern, http.HandlerFunc(h.handleCopy))
			r.Method(MethodMove, pattern, http.HandlerFunc(h.handleMove))
		}
	})

	return r
}

// scopeMiddleware roots the request at the caller's collection when
// per-user roots are enabled, creating that collection on first use.
func (h *Handler) scopeMiddleware(next http.Handler) http.Handler {
	if !h.config.PerUserRoot {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !drivedav.IsValidName(identity) {
			WriteError(w, http.StatusForbidden, "forbidden", "Identity cannot be used as a storage root")
			return
		}

		if err := h.service.EnsureCollection(r.Context(), identity); err != nil {
			HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withScope(r.Context(), identity)))
	})
}

// resolve maps the request path onto a scoped logical path.
func resolve(r *http.Request) (string, bool) {
	p, err := drivedav.ResolvePath(r.URL.EscapedPath())
	if err != nil {
		return "", false
	}
	return drivedav.ScopePath(scopeFromContext(r.Context()), p), true
}

// destination resolves the Destination header of COPY and MOVE. It may be
// an absolute URL or an absolute path.
func destination(r *http.Request) (string, error) {
	raw := r.Header.Get("Destination")
	if raw == "" {
		return "", fmt.Errorf("%w: missing Destination header", drivedav.ErrBadRequest)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: destination: %w", drivedav.ErrBadRequest, err)
	}
	// Only the path counts. Proxies commonly rewrite Host, so the
	// authority of an absolute Destination is not compared.
	p, err := drivedav.ResolvePath(u.EscapedPath())
	if err != nil {
		return "", err
	}
	return drivedav.ScopePath(scopeFromContext(r.Context()), p), nil
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	slog.Debug("method not allowed", "method", r.Method, "path", r.URL.Path)
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	info, content, err := h.service.Get(r.Context(), p)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	slog.Debug("served file", "method", r.Method, "path", p, "size", info.Size)
	http.ServeContent(w, r, drivedav.BaseName(p), info.ModTime, content)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	p, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	body := io.Reader(r.Body)
	if h.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	created, err := h.service.Put(r.Context(), p, body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large")
			return
		}
		HandleError(w, err)
		return
	}

	status := http.StatusNoContent
	if created {
		status = http.StatusCreated
	}
	slog.Debug("stored file", "method", r.Method, "path", p, "status", status)
	w.WriteHeader(status)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	removed, err := h.service.Delete(r.Context(), p)
	if err != nil {
		HandleError(w, err)
		return
	}

	slog.Debug("deleted", "method", r.Method, "path", p, "removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMkcol(w http.ResponseWriter, r *http.Request) {
	p, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	if hasBody(r) {
		HandleError(w, drivedav.ErrUnsupportedMediaType)
		return
	}

	if err := h.service.Mkcol(r.Context(), p); err != nil {
		HandleError(w, err)
		return
	}

	slog.Debug("created collection", "method", r.Method, "path", p)
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	src, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	dst, err := destination(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	opts := drivedav.CopyOptions{
		Overwrite: drivedav.ParseOverwrite(r.Header.Get("Overwrite")),
		Depth:     drivedav.DepthInfinity,
	}
	if r.Header.Get("Depth") == "0" {
		opts.Depth = drivedav.DepthZero
	}

	created, err := h.service.Copy(r.Context(), src, dst, opts)
	if err != nil {
		HandleError(w, err)
		return
	}

	h.writeTransferStatus(w, r, src, dst, created)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	src, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	dst, err := destination(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	created, err := h.service.Move(r.Context(), src, dst, drivedav.ParseOverwrite(r.Header.Get("Overwrite")))
	if err != nil {
		HandleError(w, err)
		return
	}

	h.writeTransferStatus(w, r, src, dst, created)
}

func (h *Handler) writeTransferStatus(w http.ResponseWriter, r *http.Request, src, dst string, created bool) {
	status := http.StatusNoContent
	if created {
		status = http.StatusCreated
	}
	slog.Debug("transferred", "method", r.Method, "path", src, "destination", dst, "status", status)
	w.WriteHeader(status)
}

func (h *Handler) handlePropfind(w http.ResponseWriter, r *http.Request) {
	p, ok := resolve(r)
	if !ok {
		writeNotFound(w)
		return
	}

	depth, err := drivedav.ParseDepth(r.Header.Get("Depth"), drivedav.DepthOne)
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := readPropfind(r.Body); err != nil {
		HandleError(w, err)
		return
	}

	entries, err := h.service.Propfind(r.Context(), p, depth)
	if err != nil {
		HandleError(w, err)
		return
	}

	slog.Debug("listed", "method", r.Method, "path", p, "depth", depth.String(), "entries", len(entries))
	if err := writeMultistatus(w, scopeFromContext(r.Context()), entries); err != nil {
		slog.Error("failed to write multistatus", "error", err)
	}
}

// hasBody reports whether the request carries a non-empty body.
func hasBody(r *http.Request) bool {
	if r.ContentLength > 0 {
		return true
	}
	if r.ContentLength == 0 || r.Body == nil || r.Body == http.NoBody {
		return false
	}
	var buf [1]byte
	n, _ := io.ReadFull(r.Body, buf[:])
	return n > 0
}
