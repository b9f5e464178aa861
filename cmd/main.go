package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"time"

	"celemeter/internal/api"
	"celemeter/internal/config"
	"celemeter/internal/export"
	"celemeter/internal/metrics"
	"celemeter/internal/models"
	"celemeter/internal/parser"
	"celemeter/internal/trajectory"

	"github.com/spf13/cobra"
)

var (
	modeName string
	cfg      *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "celemeter",
		Short: "Celemeter - GPS trajectories from device telemetry logs",
		Long: `A tool for extracting GPS fixes from >23|01: telemetry logs and turning
them into speed-colored trajectories for map rendering.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.RecordMode, err = parser.ParseRecordMode(modeName)
			}
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modeName, "mode", "m", "mixed", "Record shapes to accept (mixed, extended)")

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseFile runs the pipeline over one file. An empty trajectory is
// reported to the user and returned as a nil trajectory without error.
func parseFile(path string) (*models.Trajectory, parser.Stats, error) {
	tr, stats, err := parser.NewParser(cfg.RecordMode).ParseFile(path)
	if errors.Is(err, trajectory.ErrEmptyTrajectory) {
		fmt.Printf("⚠️  %s: %v\n", path, trajectory.ErrEmptyTrajectory)
		return nil, stats, nil
	}
	return tr, stats, err
}

// renderCmd parses a log and prints or exports the trajectory
func renderCmd() *cobra.Command {
	var formatName string
	var output string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Build the speed-colored trajectory of a log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			tr, _, err := parseFile(args[0])
			if err != nil {
				return err
			}
			if tr == nil {
				return nil
			}

			if formatName == "" {
				printSummary(os.Stdout, tr, time.Since(start))
				return nil
			}

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("error creating output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, tr, format); err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("Trajectory exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Export format (json, geojson, gpx); empty prints a summary")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the export to a file instead of stdout")
	return cmd
}

func printSummary(w io.Writer, tr *models.Trajectory, elapsed time.Duration) {
	b := tr.Bounds
	fmt.Fprintf(w, "Found %d points, %d segments (parse time: %v)\n", len(tr.Points), len(tr.Segments), elapsed)
	fmt.Fprintf(w, "Bounds: %.6f,%.6f -> %.6f,%.6f\n\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)

	for i, s := range tr.Segments {
		if s.SpeedKmh != nil {
			fmt.Fprintf(w, "%4d [%s] %s | %.6f,%.6f -> %.6f,%.6f | %.1f km/h\n",
				i, s.Color.Hex(), s.Timestamp,
				s.From.Latitude, s.From.Longitude, s.To.Latitude, s.To.Longitude, *s.SpeedKmh)
			continue
		}
		fmt.Fprintf(w, "%4d [%s] %.6f,%.6f -> %.6f,%.6f\n",
			i, s.Color.Hex(), s.From.Latitude, s.From.Longitude, s.To.Latitude, s.To.Longitude)
	}

	fmt.Fprintf(w, "\n📍 %s\n", tr.Terminal.Label)
}

// statsCmd shows parse statistics for log files
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file...]",
		Short: "Show parse statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, file := range args {
				tr, stats, err := parseFile(file)
				if err != nil {
					fmt.Printf("  Error: %v\n", err)
					continue
				}

				fmt.Printf("📊 %s\n", file)
				fmt.Println("=====================================")
				fmt.Printf("  Record Mode:        %s\n", cfg.RecordMode)
				fmt.Printf("  Lines Scanned:      %d\n", stats.Lines)
				fmt.Printf("  Matched Records:    %d\n", stats.Matched)
				fmt.Printf("  Accepted Points:    %d\n", stats.Accepted)
				fmt.Printf("  Rejected Records:   %d\n", stats.Rejected)
				for reason, n := range stats.Reasons {
					fmt.Printf("    %-18s %d\n", reason+":", n)
				}
				if tr != nil {
					fmt.Printf("  Segments:           %d\n", len(tr.Segments))
					fmt.Printf("  Last Position:      %.6f,%.6f\n", tr.Terminal.Latitude, tr.Terminal.Longitude)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

// serverCmd starts the map shell host
func serverCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the map upload server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Addr
			}

			opts := api.Options{
				Mode:           cfg.RecordMode,
				MaxUploadBytes: cfg.MaxUploadBytes,
				WebDir:         cfg.WebDir,
			}
			if cfg.Metrics {
				opts.Metrics = metrics.NewCollector()
			}
			server := api.NewServer(opts)

			fmt.Printf("🚀 Celemeter Map Server\n")
			fmt.Printf("   Listening on http://localhost%s\n", addr)
			fmt.Printf("   Record mode: %s\n\n", cfg.RecordMode)
			fmt.Println("Available endpoints:")
			fmt.Println("  GET  /health")
			fmt.Println("  POST /api/v1/trajectory")
			fmt.Println("  POST /api/v1/export/{json|geojson|gpx}")
			if cfg.Metrics {
				fmt.Println("  GET  /metrics")
			}
			fmt.Println()

			return http.ListenAndServe(addr, server.Router())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from CELEMETER_ADDR)")
	return cmd
}

// generateCmd writes a synthetic telemetry log
func generateCmd() *cobra.Command {
	var count int
	var basic bool
	var noise float64
	var output string
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sample telemetry log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			var w io.Writer = os.Stdout
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("error creating output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			written, err := writeSampleLog(w, rand.New(rand.NewSource(seed)), count, basic, noise)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("✓ Generated %d telemetry lines in %s\n", written, output)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 500, "Number of GPS fixes to generate")
	cmd.Flags().BoolVar(&basic, "basic", false, "Emit coordinate-only records")
	cmd.Flags().Float64Var(&noise, "noise", 0.05, "Fraction of malformed or unrelated lines")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the log to a file instead of stdout")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the clock)")
	return cmd
}

// writeSampleLog emits a random walk around San Francisco in the device
// log format, interleaved with unrelated and malformed lines.
func writeSampleLog(w io.Writer, rng *rand.Rand, count int, basic bool, noise float64) (int, error) {
	lat, lon := 37.7749, -122.4194
	heading := rng.Float64() * 2 * math.Pi
	speed := 10.0
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	written := 0

	for i := 0; i < count; i++ {
		if rng.Float64() < noise {
			line := fmt.Sprintf("[%s] modem: signal %d dBm\n", ts.Format(time.RFC3339), -60-rng.Intn(40))
			if rng.Intn(2) == 0 {
				line = fmt.Sprintf(">23|01:%s,,,,,,,,,n/a,n/a,0<CRC>\n", ts.Format("2006-01-02T15:04:05"))
			}
			if _, err := io.WriteString(w, line); err != nil {
				return written, err
			}
			written++
		}

		speed = math.Max(0, math.Min(40, speed+rng.NormFloat64()*3))
		heading += rng.NormFloat64() * 0.2
		step := speed / 3600 / 111 // degrees travelled in one second
		lat += step * math.Cos(heading)
		lon += step * math.Sin(heading) / math.Cos(lat*math.Pi/180)
		ts = ts.Add(time.Second)

		var line string
		if basic {
			line = fmt.Sprintf(">23|01:%s,0,0,0,0,0,0,0,0,%.6f,%.6f<CRC>\n", ts.Format("2006-01-02T15:04:05"), lat, lon)
		} else {
			line = fmt.Sprintf(">23|01:%s,0,0,0,0,0,0,0,0,%.6f,%.6f,%.1f<CRC>\n", ts.Format("2006-01-02T15:04:05"), lat, lon, speed)
		}
		if _, err := io.WriteString(w, line); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}
