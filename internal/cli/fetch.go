package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/display"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/noaa"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
	"github.com/couchcryptid/metar-flight-category/internal/pipeline"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fetch STATION...",
		Short: "Fetch live reports and show them on the console board",
		Args:  cobra.MinimumNArgs(1),
		Run:   runFetch,
	}

	cmd.Flags().String("base-url", noaa.DefaultBaseURL, "Station file directory URL")
	cmd.Flags().Duration("timeout", 5*time.Second, "Per-request timeout")
	cmd.Flags().IntP("brightness", "b", domain.MaxBrightness, "Board brightness (1-10)")
	cmd.Flags().Bool("save", false, "Also store the results in the history database")

	RootCmd.AddCommand(cmd)
}

func runFetch(cmd *cobra.Command, args []string) {
	baseURL, _ := cmd.Flags().GetString("base-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	brightness, _ := cmd.Flags().GetInt("brightness")
	save, _ := cmd.Flags().GetBool("save")

	stations := make([]string, len(args))
	for i, a := range args {
		stations[i] = strings.ToUpper(a)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetrics()
	client := noaa.NewClient(baseURL, timeout, metrics, logger)

	// The board goes to stderr when stdout carries JSON.
	boardOut := cmd.OutOrStdout()
	if formatFlag == "json" {
		boardOut = cmd.ErrOrStderr()
	}
	loaders := pipeline.Loaders{
		display.NewLoader(display.NewBoard(boardOut), display.StaticBrightness(brightness), logger),
	}
	if save {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		loaders = append(loaders, s)
	}

	p := pipeline.New(client, pipeline.NewClassifier(logger), loaders, logger, metrics, pipeline.Options{
		Stations:    stations,
		Concurrency: min(len(stations), 8),
	})

	categories, err := p.Poll(cmd.Context())
	if err != nil {
		exitErr("fetch", err)
	}
	if formatFlag == "json" {
		printJSON(cmd.OutOrStdout(), categories)
	}
	if len(categories) < len(stations) {
		fmt.Fprintf(os.Stderr, "error: %d of %d stations could not be classified\n",
			len(stations)-len(categories), len(stations))
		os.Exit(1)
	}
}
