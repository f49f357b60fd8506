package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	linesNoOCR   bool
	linesProfile string
)

func init() {
	linesCmd.Flags().BoolVar(&linesNoOCR, "no-ocr", false, "Disable the OCR fallback")
	linesCmd.Flags().StringVar(&linesProfile, "profile", "", "Profile file (.yml, .yaml, .json, .json5)")
	rootCmd.AddCommand(linesCmd)
}

var linesCmd = &cobra.Command{
	Use:   "lines <pdf>",
	Short: "Print the line sequence of a certificate",
	Long: `Print the trimmed lines of a certificate with their indices, exactly as
the field scanner sees them. Useful when tuning a profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runLines,
}

// LinesResponse is the response for the lines command.
type LinesResponse struct {
	File  string `json:"file"`
	Lines []Line `json:"lines"`
}

// Line is one entry of the line sequence.
type Line struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func runLines(cmd *cobra.Command, args []string) error {
	gc := mustLoadGlobalConfig()
	profile := mustLoadProfile(linesProfile, gc)

	source := newLineSource(profile, gc, !linesNoOCR)
	lines, err := source.ExtractLines(context.Background(), args[0])
	if err != nil {
		exitWithError(ExitDataError, "extracting lines: %v", err)
	}

	if humanOutput {
		for i, l := range lines {
			fmt.Printf("%4d  %s\n", i, l)
		}
		return nil
	}

	resp := LinesResponse{File: args[0], Lines: make([]Line, len(lines))}
	for i, l := range lines {
		resp.Lines[i] = Line{Index: i, Text: l}
	}
	return outputJSON(resp)
}
