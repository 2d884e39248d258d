package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Check a JSON-lines fixture file of reports against expected categories",
		Long: `Each line of FILE is an object {"station": "...", "report": "...", "want": "IFR"}.
The command exits non-zero if any report fails to decode or classifies differently.`,
		Args: cobra.ExactArgs(1),
		Run:  runCheck,
	}

	RootCmd.AddCommand(cmd)
}

// fixture is one line of a check file.
type fixture struct {
	Station string              `json:"station"`
	Report  string              `json:"report"`
	Want    domain.SeverityTier `json:"want"`
}

// checkSummary tracks pass/fail for a fixture file.
type checkSummary struct {
	Checked  int      `json:"checked"`
	Failures []string `json:"failures,omitempty"`
}

func (s *checkSummary) failf(format string, args ...any) {
	s.Failures = append(s.Failures, fmt.Sprintf(format, args...))
}

func (s *checkSummary) passed() bool { return len(s.Failures) == 0 }

func runCheck(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		exitErr("open fixtures", err)
	}
	defer f.Close()

	summary, err := checkFixtures(f)
	if err != nil {
		exitErr("check", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, msg := range summary.Failures {
			fmt.Fprintf(out, "  FAIL %s\n", msg)
		}
		status := "PASS"
		if !summary.passed() {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%s: %d checked, %d failed\n", status, summary.Checked, len(summary.Failures))
	} else {
		printJSON(out, summary)
	}

	if !summary.passed() {
		os.Exit(1)
	}
}

// checkFixtures classifies every fixture in r. A malformed line is an error;
// a wrong or undecodable classification is recorded as a failure.
func checkFixtures(r io.Reader) (*checkSummary, error) {
	summary := &checkSummary{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var fx fixture
		if err := json.Unmarshal([]byte(text), &fx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		summary.Checked++

		fc, err := domain.ClassifyReport(domain.RawReport{Station: fx.Station, Body: fx.Report})
		if err != nil {
			summary.failf("line %d: %v", line, err)
			continue
		}
		if fc.Category != fx.Want {
			summary.failf("line %d: %s: got %s (wind %s, ceiling %s, visibility %s), want %s",
				line, fx.Station, fc.Category, fc.Wind, fc.Ceiling, fc.Visibility, fx.Want)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}
