package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history [STATION]",
		Short: "Show stored classifications for a station, or category totals",
		Args:  cobra.MaximumNArgs(1),
		Run:   runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum rows to show")

	RootCmd.AddCommand(cmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		counts, err := s.CategoryCounts(cmd.Context())
		if err != nil {
			exitErr("counts", err)
		}
		printJSON(out, counts)
		return
	}

	records, err := s.History(cmd.Context(), strings.ToUpper(args[0]), limit)
	if err != nil {
		exitErr("history", err)
	}

	if formatFlag == "text" {
		writeHistoryTable(out, records)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	printJSON(out, records)
}

func writeHistoryTable(w io.Writer, records []history.Record) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-20s %-4s %-4s %-4s %-4s", "PROCESSED", "CAT", "WIND", "CIG", "VIS")))
	for _, r := range records {
		fc := r.Flight
		fmt.Fprintf(w, "%-20s %-4s %-4s %-4s %-4s %s\n",
			r.ProcessedAt.UTC().Format(time.DateTime), fc.Category, fc.Wind, fc.Ceiling, fc.Visibility,
			dimStyle.Render(r.Report))
	}
}
