package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matsen/certscan/internal/certdate"
	"github.com/spf13/cobra"
)

var (
	dateNoOCR   bool
	dateProfile string
)

func init() {
	dateCmd.Flags().BoolVar(&dateNoOCR, "no-ocr", false, "Disable the OCR fallback")
	dateCmd.Flags().StringVar(&dateProfile, "profile", "", "Profile file (.yml, .yaml, .json, .json5)")
	rootCmd.AddCommand(dateCmd)
}

var dateCmd = &cobra.Command{
	Use:   "date <pdf>",
	Short: "Print the certificate date",
	Long: `Print the date the certificate was issued, as YYYY-MM-DD.

Exits with status 3 when no date can be resolved.`,
	Args: cobra.ExactArgs(1),
	RunE: runDate,
}

// DateResponse is the response for the date command.
type DateResponse struct {
	File string `json:"file"`
	Date string `json:"date"`
}

func runDate(cmd *cobra.Command, args []string) error {
	gc := mustLoadGlobalConfig()
	profile := mustLoadProfile(dateProfile, gc)

	lines, err := newLineSource(profile, gc, !dateNoOCR).ExtractLines(context.Background(), args[0])
	if err != nil {
		exitWithError(ExitDataError, "extracting lines: %v", err)
	}

	date := certdate.Resolve(lines)
	if humanOutput {
		if date == "" {
			fmt.Println("no date found")
		} else {
			fmt.Println(date)
		}
	} else {
		outputJSON(DateResponse{File: args[0], Date: date})
	}
	if date == "" {
		os.Exit(ExitDataError)
	}
	return nil
}
