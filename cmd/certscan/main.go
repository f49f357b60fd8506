// Package main provides the certscan CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/certscan/internal/config"
	"github.com/matsen/certscan/internal/pdf"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "certscan",
	Short: "Extract fields from ISSN assignment certificates",
	Long: `certscan reads ISSN assignment certificates (PDF) and extracts the
assigned ISSN, titles, publisher, frequency, medium and dates into a
spreadsheet, CSV, JSON or SQLite results database.

Scanned certificates without a text layer are read with OCR
(pdftoppm + tesseract).

All commands output JSON by default.
Use --human flag for human-readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	// Load .env file if present (for CERTSCAN_* overrides)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// mustLoadGlobalConfig loads the global config, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	gc, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return gc
}

// mustLoadProfile loads the profile at path, falling back to the global
// config's profile and then to the built-in default. Exits on error.
func mustLoadProfile(path string, gc *config.GlobalConfig) *config.Profile {
	if path == "" {
		path = gc.Profile
	}
	if path == "" {
		p := config.DefaultProfile()
		return &p
	}
	p, err := config.LoadProfile(config.ExpandTilde(path))
	if err != nil {
		exitWithError(ExitConfigError, "loading profile: %v", err)
	}
	return p
}

// newLineSource builds the PDF line source, with the OCR fallback unless
// disabled.
func newLineSource(p *config.Profile, gc *config.GlobalConfig, useOCR bool) *pdf.Source {
	var ocr pdf.OCR
	if useOCR {
		ocr = pdf.NewTesseract(p.OCR, gc.Pdftoppm, gc.Tesseract)
	}
	return pdf.NewSource(ocr, p.OCR, slog.Default())
}
