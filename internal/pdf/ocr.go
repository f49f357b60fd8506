package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/certscan/internal/config"
	"golang.org/x/time/rate"
)

// Tesseract renders pages with pdftoppm and recognizes them with tesseract.
type Tesseract struct {
	pdftoppm  string
	tesseract string
	lang      string
	dpi       int
	limiter   *rate.Limiter
}

// NewTesseract creates an OCR runner. Empty binary paths default to the
// commands found on PATH.
func NewTesseract(settings config.OCRSettings, pdftoppm, tesseract string) *Tesseract {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if tesseract == "" {
		tesseract = "tesseract"
	}
	dpi := settings.DPI
	if dpi <= 0 {
		dpi = 200
	}

	limit := rate.Inf
	if settings.Rate > 0 {
		limit = rate.Limit(settings.Rate)
	}

	return &Tesseract{
		pdftoppm:  pdftoppm,
		tesseract: tesseract,
		lang:      settings.Lang,
		dpi:       dpi,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Recognize renders every page of the PDF at path and returns the recognized
// text of all pages, in page order.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "certscan-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	render := exec.CommandContext(ctx, t.pdftoppm, "-r", strconv.Itoa(t.dpi), "-png", path, prefix)
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("rendering pages: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", fmt.Errorf("listing rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("rendering pages: no pages produced for %s", path)
	}
	sortPages(pages)

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		args := []string{page, "stdout"}
		if t.lang != "" {
			args = append(args, "-l", t.lang)
		}
		cmd := exec.CommandContext(ctx, t.tesseract, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("recognizing %s: %w: %s", filepath.Base(page), err, strings.TrimSpace(stderr.String()))
		}
		texts = append(texts, string(out))
	}

	return strings.Join(texts, "\n"), nil
}

// sortPages orders pdftoppm output (page-1.png ... page-10.png) numerically.
func sortPages(pages []string) {
	num := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), ".png")
		n, _ := strconv.Atoi(base[strings.LastIndex(base, "-")+1:])
		return n
	}
	sort.SliceStable(pages, func(i, j int) bool { return num(pages[i]) < num(pages[j]) })
}
