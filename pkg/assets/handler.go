package assets

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// IndexFile is served for the root path.
const IndexFile = "index.html"

// CacheControl selects the Cache-Control strategy.
type CacheControl int

const (
	// CacheNone disables caching. Useful in development.
	CacheNone CacheControl = iota

	// CacheProduction caches fingerprinted files for a year and everything
	// else for an hour with revalidation.
	CacheProduction
)

// HandlerOption configures Handler.
type HandlerOption func(*handler)

// WithCacheControl sets the caching strategy.
func WithCacheControl(c CacheControl) HandlerOption {
	return func(h *handler) {
		h.cache = c
	}
}

// WithHeaders adds fixed headers to every response.
func WithHeaders(headers map[string]string) HandlerOption {
	return func(h *handler) {
		h.headers = headers
	}
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type handler struct {
	src     Source
	cache   CacheControl
	headers map[string]string
	logger  *slog.Logger
}

// Handler serves files from src. "/" serves IndexFile.
func Handler(src Source, opts ...HandlerOption) http.Handler {
	h := &handler{
		src:    src,
		logger: slog.Default().With("component", "assets"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if urlPath == "" || urlPath == "/" {
		urlPath = "/" + IndexFile
	}
	rel, ok := RelPath(urlPath)
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, info, err := h.src.Open(r.Context(), rel)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("open asset", "path", rel, "error", err)
			http.Error(w, "Bad Gateway", http.StatusBadGateway)
			return
		}
		http.NotFound(w, r)
		return
	}
	defer body.Close()

	h.applyCacheHeaders(w, rel)
	for key, value := range h.headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", info.ContentType)

	if rs, ok := body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, rel, info.ModTime, rs)
		return
	}

	if !info.ModTime.IsZero() {
		if ims, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil && !info.ModTime.Truncate(time.Second).After(ims) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Debug("copy asset", "path", rel, "error", err)
	}
}

// RelPath returns the sanitized relative file name for a request path.
// It rejects traversal and absolute-path tricks so a source can never be
// asked for a file outside its root.
func RelPath(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// A second leading "/" is an absolute-path attempt ("//etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so traversal is not cleaned away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

func (h *handler) applyCacheHeaders(w http.ResponseWriter, rel string) {
	switch h.cache {
	case CacheNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the base name carries a content hash,
// e.g. "client.a1b2c3d4.js".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// ParseCacheControl maps a configuration string to a CacheControl.
func ParseCacheControl(s string) (CacheControl, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "dev", "development":
		return CacheNone, true
	case "production", "prod":
		return CacheProduction, true
	}
	return CacheNone, false
}
