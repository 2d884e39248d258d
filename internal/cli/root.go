// Package cli implements the metar command-line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "metar",
	Short: "Classify METAR reports into flight categories",
	Long:  "Decode wind, ceiling and visibility from METAR reports and classify them as VFR, MVFR, IFR or LIFR.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "History database path (default: $HISTORY_DB_PATH or ~/.flightcat/history.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("HISTORY_DB_PATH"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flightcat", "history.db")
}

func openStore() (*history.Store, error) {
	return history.NewStore(getDBPath())
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
