package main

import (
	"os"
	"strings"

	"github.com/matsen/certscan/internal/issn"
	"github.com/matsen/certscan/internal/validate"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <issn>...",
	Short: "Verify ISSN check digits",
	Long: `Verify the format and mod-11 check digit of each ISSN.

Exits with status 3 if any identifier is malformed or fails its checksum.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

// CheckResult is the checksum status of one identifier.
type CheckResult struct {
	ISSN       string              `json:"issn"`
	Format     bool                `json:"format_valid"`
	Checksum   issn.ChecksumStatus `json:"checksum"`
	CheckDigit string              `json:"expected_check_digit,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	results := make([]CheckResult, 0, len(args))
	failed := false
	for _, arg := range args {
		r := checkISSN(arg)
		if r.Checksum != issn.ChecksumValid {
			failed = true
		}
		results = append(results, r)
	}

	if humanOutput {
		t := newTable("ISSN", "Format", "Checksum", "Check digit")
		for _, r := range results {
			t.AppendRow([]interface{}{r.ISSN, r.Format, r.Checksum, r.CheckDigit})
		}
		t.Render()
	} else {
		outputJSON(results)
	}

	if failed {
		os.Exit(ExitDataError)
	}
	return nil
}

// checkISSN reports the format and checksum status of s. Malformed input has
// checksum status absent.
func checkISSN(s string) CheckResult {
	s = strings.TrimSpace(s)
	r := CheckResult{ISSN: s, Format: validate.ISSN(s), Checksum: issn.ChecksumAbsent}
	if d := validate.CheckDigit(s); d != 0 {
		r.CheckDigit = string(d)
	}
	if !r.Format {
		return r
	}
	r.Checksum = issn.ChecksumInvalid
	if validate.ISSNChecksum(s) {
		r.Checksum = issn.ChecksumValid
	}
	return r
}
