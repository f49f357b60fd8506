// Package pdf turns PDF certificates into ordered text lines, falling back to
// OCR for scanned documents.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/matsen/certscan/internal/config"
	"github.com/matsen/certscan/internal/scan"
)

// ErrNoText is returned when neither text extraction nor OCR produced any text.
var ErrNoText = errors.New("no text in document")

// OCR recognizes the text of a rendered document.
type OCR interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Source extracts lines from PDF files.
type Source struct {
	// Text extracts the embedded text layer. Defaults to ExtractText.
	Text func(path string) (string, error)
	// OCR replaces a text layer that failed to parse, has fewer than MinChars
	// non-space characters, or whose line breaks were lost (fewer than
	// MinLines non-blank lines, or a line longer than MaxLineLen). Zero
	// thresholds are not checked. Nil disables the fallback.
	OCR        OCR
	MinChars   int
	MinLines   int
	MaxLineLen int
	Logger     *slog.Logger
}

// NewSource creates a Source using the embedded text layer and the given OCR
// fallback (which may be nil).
func NewSource(ocr OCR, settings config.OCRSettings, logger *slog.Logger) *Source {
	return &Source{
		Text:       ExtractText,
		OCR:        ocr,
		MinChars:   settings.MinChars,
		MinLines:   settings.MinLines,
		MaxLineLen: settings.MaxLineLen,
		Logger:     logger,
	}
}

// ExtractLines returns the document's trimmed lines in reading order, blank
// lines included.
func (s *Source) ExtractLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	extract := s.Text
	if extract == nil {
		extract = ExtractText
	}

	text, textErr := extract(path)
	if textErr != nil && s.OCR == nil {
		return nil, textErr
	}

	if reason := s.ocrReason(text, textErr); s.OCR != nil && reason != "" {
		if reason == "short text" {
			logger.Info("applying OCR", "file", path, "reason", reason, "chars", countNonSpace(text))
		} else {
			logger.Warn("text layer unusable, applying OCR", "file", path, "reason", reason)
		}

		ocrText, err := s.OCR.Recognize(ctx, path)
		switch {
		case err == nil:
			text = ocrText
		case textErr != nil:
			return nil, errors.Join(textErr, fmt.Errorf("ocr: %w", err))
		default:
			logger.Warn("OCR failed, keeping embedded text", "file", path, "error", err)
		}
	}

	if strings.TrimSpace(text) == "" {
		if textErr != nil {
			return nil, errors.Join(ErrNoText, textErr)
		}
		return nil, ErrNoText
	}
	return scan.Split(text), nil
}

// ocrReason says why the embedded text layer should be replaced by OCR, or
// returns "" if it is usable.
func (s *Source) ocrReason(text string, textErr error) string {
	if textErr != nil {
		return "text extraction failed"
	}
	if countNonSpace(text) < s.MinChars {
		return "short text"
	}
	lines, longest := lineStats(text)
	if s.MinLines > 0 && lines < s.MinLines {
		return "too few lines"
	}
	if s.MaxLineLen > 0 && longest > s.MaxLineLen {
		return "line too long"
	}
	return ""
}

// lineStats counts the non-blank lines of text and the rune length of the
// longest one.
func lineStats(text string) (lines, longest int) {
	for _, ln := range scan.Split(text) {
		if ln == "" {
			continue
		}
		lines++
		if n := utf8.RuneCountInString(ln); n > longest {
			longest = n
		}
	}
	return lines, longest
}

// ExtractText extracts the text layer of every page, one page after another.
func ExtractText(filePath string) (text string, err error) {
	// The PDF parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
