package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/Kkkiiiirran/FitFlow/internal/app"
	"github.com/Kkkiiiirran/FitFlow/internal/config"
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/logging"
	"github.com/Kkkiiiirran/FitFlow/internal/metrics"
	"github.com/Kkkiiiirran/FitFlow/internal/motivation"
	"github.com/Kkkiiiirran/FitFlow/internal/server"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
	"github.com/Kkkiiiirran/FitFlow/internal/tray"
)

func main() {
	fmt.Println("FitFlow - Exercise Repetition Tracker")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	log.Warnf("---->> running in [%s] environment", *env)

	timeout, err := cfg.Timeout(motivation.DefaultTimeout)
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	registry := exercise.NewRegistry()
	if err := registry.ApplyOverrides(cfg.Profiles); err != nil {
		log.Fatalf("profile overrides: %s", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize store: %s", err)
	}
	log.Debugf("using database: %s", st.Path())

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fitflow", "engine", promRegistry)

	application := app.New(app.Config{
		Registry:         registry,
		Store:            st,
		Metrics:          metricsManager,
		PluginDir:        cfg.PluginDir,
		GeneratorPlugin:  cfg.GeneratorPlugin,
		GeneratorTimeout: timeout,
		CameraID:         cfg.CameraID,
	})
	if err := application.LoadSettings(); err != nil {
		log.Errorf("load settings: %s", err)
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Errorf("discover plugins: %s", err)
	}

	webDir := findWebDir()
	if webDir != "" {
		log.Infof("serving static files from: %s", webDir)
	}

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(server.Config{
			StaticDir: webDir,
			App:       application,
			Gatherer:  promRegistry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %s", err)
		}
	}()

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Errorf("camera pipeline not started: %s", err)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	if cfg.TrayEnabled {
		runTray(application, cfg.Port, chOsInterrupt)
	} else {
		<-chOsInterrupt
	}

	log.Println("shutting down ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	application.Stop()
	err = multierr.Combine(
		httpServer.Shutdown(ctx),
		st.Close(),
	)
	if err != nil {
		log.Errorf("shutdown: %s", err)
	}
	if logCloser != nil {
		logCloser.Close()
	}
}

// runTray blocks in the tray event loop until Quit is clicked or a signal
// arrives.
func runTray(a *app.App, port int, interrupt <-chan os.Signal) {
	t := tray.New(tray.ItemsFromProfiles(a.Registry().Profiles()), a.Exercise())
	t.OnToggle(a.SetEnabled)
	t.OnSelect(func(id string) error {
		if err := a.SelectExercise(id); err != nil {
			log.WithError(err).WithField("exercise", id).Error("failed to select exercise")
			return err
		}
		return nil
	})
	t.OnReset(a.Reset)
	t.OnSettings(func() {
		openBrowser(fmt.Sprintf("http://localhost:%d/", port))
	})

	unsubscribe := a.Subscribe(func(u app.Update) {
		if u.Message == nil {
			t.SetResult(u.Exercise, u.Result)
		}
	})
	defer unsubscribe()

	go func() {
		<-interrupt
		t.Quit()
	}()

	t.Run()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("failed to open browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.fitflow/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".fitflow", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
