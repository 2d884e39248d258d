package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [report...]",
		Short: "Classify reports given as arguments or one per line on stdin",
		Run:   runClassify,
	}

	RootCmd.AddCommand(cmd)
}

type classifyResult struct {
	Report string `json:"report"`
	domain.FlightCategory
	Error string `json:"error,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) {
	reports := args
	if len(reports) == 0 {
		var err error
		reports, err = readLines(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
	}

	results := classifyAll(reports)
	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(out, "ERR   %s (%s)\n", r.Report, r.Error)
				continue
			}
			fmt.Fprintf(out, "%-4s  %s\n", r.Category, r.Report)
		}
	} else {
		printJSON(out, results)
	}

	for _, r := range results {
		if r.Error != "" {
			os.Exit(1)
		}
	}
}

func classifyAll(reports []string) []classifyResult {
	results := make([]classifyResult, 0, len(reports))
	for _, report := range reports {
		fc, err := domain.Classify(report)
		res := classifyResult{Report: report, FlightCategory: fc}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
