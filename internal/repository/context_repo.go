package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SiteContext is the background text injected into every system prompt.
// It is read once at startup and never changes afterwards.
type SiteContext struct {
	text   string
	source string
}

// NewSiteContext wraps already loaded text
func NewSiteContext(text, source string) *SiteContext {
	return &SiteContext{text: strings.TrimSpace(text), source: source}
}

// Text returns the context text
func (s *SiteContext) Text() string {
	if s == nil {
		return ""
	}
	return s.text
}

// Source returns where the text came from
func (s *SiteContext) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// LoadSiteContext reads the context file at path, truncated to maxBytes on a
// rune boundary. A missing file yields an empty context and a warning.
func LoadSiteContext(path string, maxBytes int, logger *zap.Logger) (*SiteContext, error) {
	if path == "" {
		logger.Warn("No site context file configured, using empty context")
		return NewSiteContext("", ""), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Site context file not found, using empty context", zap.String("path", path))
		return NewSiteContext("", path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site context: %w", err)
	}

	text := string(data)
	if maxBytes > 0 && len(text) > maxBytes {
		logger.Warn("Site context truncated",
			zap.String("path", path),
			zap.Int("size", len(text)),
			zap.Int("max_bytes", maxBytes),
		)
		text = truncateUTF8(text, maxBytes)
	}

	logger.Info("Site context loaded", zap.String("path", path), zap.Int("bytes", len(text)))
	return NewSiteContext(text, path), nil
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
