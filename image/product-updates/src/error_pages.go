package main

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"sync"
	"text/template"

	"github.com/dgraph-io/ristretto"
)

// ErrorPages renders the generic responses for unknown routes, rejected
// methods and handler faults. Pages are looked up under pagesRoot by status
// code and content type and fall back to a built-in body.
type ErrorPages struct {
	defaultContentType string
	pagesRoot          string
	pages              PageReader

	// cacheLock serialises Purge against lookups; ristretto's Clear must
	// not overlap with Get or Set.
	cacheLock    sync.RWMutex
	contentCache *ristretto.Cache
}

func NewErrorPages(
	defaultContentType string,
	pagesRoot string,
	pages PageReader,
	cacheMaxMemBytes int64) (*ErrorPages, error) {

	cache, err := ristretto.NewCache(&ristretto.Config{
		MaxCost:     cacheMaxMemBytes,
		NumCounters: 1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}

	return &ErrorPages{
		defaultContentType: defaultContentType,
		pagesRoot:          pagesRoot,
		pages:              pages,
		contentCache:       cache,
	}, nil
}

// Status returns a handler answering every request with code.
func (e *ErrorPages) Status(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.Write(w, r, code)
	})
}

// Purge drops every rendered page so the next request reads from disk.
func (e *ErrorPages) Purge() {
	e.cacheLock.Lock()
	defer e.cacheLock.Unlock()
	e.contentCache.Clear()
}

func (e *ErrorPages) Write(w http.ResponseWriter, r *http.Request, code int) {
	statusText := http.StatusText(code)
	if statusText == "" {
		statusText = fmt.Sprintf("Request failed with code %d", code)
	}

	requestId := r.Header.Get(RequestIdHeader)

	logger.Info().
		Str("request_id", requestId).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("proto", r.Proto).
		Int("status_code", code).
		Str("status_text", statusText).
		Msg("Serving error page")

	contentType := acceptedContentType(r)
	if contentType == "" {
		contentType = e.defaultContentType
	}

	content := e.getContent(code, contentType, statusText)

	if content == "" && contentType != e.defaultContentType {
		contentType = e.defaultContentType
		content = e.getContent(code, contentType, statusText)
	}

	if content == "" {
		contentType = "text/plain"
		content = defaultContent(code, contentType, statusText)
	}

	if requestId != "" {
		w.Header().Set(RequestIdHeader, requestId)
	}
	w.Header().Set(ContentTypeHeader, contentType)
	w.WriteHeader(code)
	w.Write([]byte(content))
}

// acceptedContentType returns the first concrete media type the client
// accepts, or "" when it accepts anything.
func acceptedContentType(r *http.Request) string {
	accept := r.Header.Get(AcceptHeader)
	if accept == "" {
		return ""
	}

	first, _, _ := strings.Cut(accept, ",")
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(first))
	if err != nil || strings.Contains(mediaType, "*") {
		return ""
	}

	return mediaType
}

func (e *ErrorPages) getKey(code int, contentType string) string {
	return fmt.Sprintf("%d-%s", code, contentType)
}

func (e *ErrorPages) getPossibleFiles(code int, exts []string) []string {

	fileNames := make([]string, 0, len(exts)*8)

	for _, ext := range exts {
		fileNames = append(fileNames,
			fmt.Sprintf("%s/%d.%s", e.pagesRoot, code, ext),
			fmt.Sprintf("%s/%d.%s.tpl", e.pagesRoot, code, ext),
			fmt.Sprintf("%s/%dx.%s", e.pagesRoot, code/10, ext),
			fmt.Sprintf("%s/%dx.%s.tpl", e.pagesRoot, code/10, ext),
			fmt.Sprintf("%s/%dxx.%s", e.pagesRoot, code/100, ext),
			fmt.Sprintf("%s/%dxx.%s.tpl", e.pagesRoot, code/100, ext),
			fmt.Sprintf("%s/all.%s", e.pagesRoot, ext),
			fmt.Sprintf("%s/all.%s.tpl", e.pagesRoot, ext),
		)
	}

	return fileNames
}

// findPage returns the first custom page for code and contentType together
// with the file it came from. Missing pages are not an error.
func (e *ErrorPages) findPage(code int, contentType string) (string, string, error) {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil {
		return "", "", fmt.Errorf("invalid content type %q: %w", contentType, err)
	}

	for i, ext := range exts {
		exts[i] = strings.TrimPrefix(ext, ".")
	}

	for _, file := range e.getPossibleFiles(code, exts) {
		content, err := e.pages.readPage(file)
		if err == nil {
			return content, file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", file, fmt.Errorf("failed to read page: %w", err)
		}
	}

	return "", "", nil
}

func (e *ErrorPages) getContent(code int, contentType string, text string) string {

	key := e.getKey(code, contentType)

	e.cacheLock.RLock()
	defer e.cacheLock.RUnlock()

	if cachedContent, ok := e.contentCache.Get(key); ok {
		return cachedContent.(string)
	}

	content, file, err := e.findPage(code, contentType)
	if err != nil {
		logger.Error().
			Err(err).
			Str("file", file).
			Str("content_type", contentType).
			Msg("Failed to load error page")
		return ""
	}

	switch {
	case content == "":
		content = defaultContent(code, contentType, text)
	case strings.HasSuffix(file, ".tpl"):
		content, err = executeTemplate(content, code, text)
		if err != nil {
			logger.Error().
				Err(err).
				Str("file", file).
				Int("status_code", code).
				Msg("Failed to render template")
			content = defaultContent(code, contentType, text)
		}
	}

	if content != "" {
		e.contentCache.Set(key, content, int64(len(key)+len(content)))
	}

	return content
}

func executeTemplate(content string, code int, text string) (string, error) {
	tpl, err := template.New("page").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var out strings.Builder

	err = tpl.Execute(&out, map[string]interface{}{
		"code": code,
		"text": text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return out.String(), nil
}

func defaultContent(code int, contentType string, statusText string) string {
	switch contentType {
	case "text/html":
		return fmt.Sprintf("<html><head><title>%d %s</title></head><body style='text-align:center;'><h1>%d</h1><h2>%s</h2></body></html>", code, statusText, code, statusText)
	case "text/plain":
		return fmt.Sprintf("%d: %s", code, statusText)
	case "application/json":
		return fmt.Sprintf("{\"code\":%d,\"text\":\"%s\"}", code, statusText)
	case "application/xml":
		return fmt.Sprintf("<error><code>%d</code><text>%s</text></error>", code, statusText)
	default:
		return ""
	}
}
