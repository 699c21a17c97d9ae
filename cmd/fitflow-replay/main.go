package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Kkkiiiirran/FitFlow/internal/config"
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/logging"
	"github.com/Kkkiiiirran/FitFlow/internal/replay"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
	"github.com/Kkkiiiirran/FitFlow/internal/trace"
)

func main() {
	var (
		env        = flag.String("env", "development", "environment [prod | production | dev | development]")
		configPath = flag.String("config", "./config.toml", "path for the TOML config file")
		recording  = flag.String("recording", "", "ID of the recording to replay")
		exerciseID = flag.String("exercise", "", "Replay as this exercise instead of the recorded one")
		out        = flag.String("out", "", "Write the per-frame trace to this Parquet file")
		profiles   = flag.String("profiles", "", "TOML file with [profiles.<id>] overrides to try, applied last")
		list       = flag.Bool("list", false, "List stored recordings and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config config.toml] --recording ID [--exercise squats] [--profiles candidate.toml] [--out trace.parquet]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*list && strings.TrimSpace(*recording) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogLevel:      "warning",
		LogFormatJSON: cfg.LogFormatJSON,
	})

	st, err := store.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *list {
		if err := listRecordings(st); err != nil {
			fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	registry := exercise.NewRegistry()
	if err := registry.ApplyOverrides(cfg.Profiles); err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}
	stored, err := st.Profiles().List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}
	if err := registry.ApplyOverrides(stored); err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}
	if *profiles != "" {
		if err := registry.ApplyTOML(*profiles); err != nil {
			fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := run(ctx, st, registry, *recording, *exerciseID, *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitflow-replay failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("replay complete\n")
	fmt.Printf("Exercise:            %s\n", sum.Exercise)
	fmt.Printf("Frames:              %d\n", sum.Frames)
	fmt.Printf("Invisible frames:    %d\n", sum.Invisible)
	fmt.Printf("Stage transitions:   %d\n", sum.Transitions)
	fmt.Printf("Duration:            %d ms\n", sum.DurationMs)
	if sum.Final.Kind == exercise.KindHold {
		fmt.Printf("Seconds held:        %d\n", sum.Seconds)
	} else {
		fmt.Printf("Repetitions:         %d\n", sum.Count)
	}
	fmt.Printf("Final stage:         %s\n", sum.Final.Stage)
	if *out != "" {
		fmt.Printf("Trace:               %s\n", *out)
	}
}

func run(ctx context.Context, st *store.Store, reg *exercise.Registry, id, exerciseID, out string) (replay.Summary, error) {
	rec, err := st.Recordings().GetByID(id)
	if err != nil {
		return replay.Summary{}, fmt.Errorf("recording %s: %w", id, err)
	}
	if exerciseID == "" {
		exerciseID = rec.ExerciseID
	}

	frames, err := st.Recordings().Frames(id)
	if err != nil {
		return replay.Summary{}, fmt.Errorf("load frames: %w", err)
	}

	sum, err := replay.Run(ctx, reg, exerciseID, frames, replay.WithLogger(log.WithField("recording", id)))
	if err != nil {
		return replay.Summary{}, err
	}

	if out != "" {
		data, err := trace.WriteParquet(sum.Rows)
		if err != nil {
			return replay.Summary{}, err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return replay.Summary{}, fmt.Errorf("write trace: %w", err)
		}
	}
	return sum, nil
}

func listRecordings(st *store.Store) error {
	recs, err := st.Recordings().List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recordings")
		return nil
	}
	for _, rec := range recs {
		fmt.Printf("%s  %-15s %5d frames  %s  %s\n",
			rec.ID, rec.ExerciseID, rec.Frames, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Name)
	}
	return nil
}
