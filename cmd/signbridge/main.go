// Command signbridge translates fingerspelled letters from a webcam into text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/signbridge/internal/app"
	"github.com/ayusman/signbridge/internal/config"
	"github.com/ayusman/signbridge/internal/logging"
	"github.com/ayusman/signbridge/internal/observe"
	"github.com/ayusman/signbridge/internal/session"
	"github.com/ayusman/signbridge/internal/store"
	"github.com/ayusman/signbridge/internal/tray"
)

// dbName is the settings, dictionary and history database inside the data dir.
const dbName = "signbridge.db"

func init() {
	// The tray and the OpenCV window both need the main OS thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "path to the YAML configuration file")
	headless := flag.Bool("headless", false, "run a single session without the tray")
	var dict dictionaryOps
	flag.StringVar(&dict.importPath, "import-dict", "", "merge a JSON word list into the custom dictionary and exit")
	flag.StringVar(&dict.add, "add-word", "", "add a word to the custom dictionary and exit")
	flag.StringVar(&dict.remove, "remove-word", "", "remove a word from the custom dictionary and exit")
	flag.BoolVar(&dict.list, "list-words", false, "print the custom dictionary and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signbridge: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signbridge: build logger: %v\n", err)
		return 1
	}
	defer logging.Sync(logger)

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		logger.Error("resolve data dir", zap.Error(err))
		return 1
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Error("create data dir", zap.String("dir", dataDir), zap.Error(err))
		return 1
	}

	st, err := store.New(filepath.Join(dataDir, dbName), logger)
	if err != nil {
		logger.Error("open store", zap.Error(err))
		return 1
	}
	defer st.Close()

	provider, err := observe.InitProvider(context.Background(), observe.ProviderConfig{})
	if err != nil {
		logger.Error("init metrics", zap.Error(err))
		return 1
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("metrics shutdown", zap.Error(err))
		}
	}()

	application, err := app.New(app.Config{
		Store:   st,
		Process: cfg,
		Logger:  logger,
		Metrics: provider.Metrics,
	})
	if err != nil {
		logger.Error("initialise application", zap.Error(err))
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("signbridge starting",
		zap.String("config", *configPath),
		zap.String("data_dir", dataDir),
		zap.Bool("headless", *headless),
	)

	if dict.requested() {
		if err := dict.run(os.Stdout, application); err != nil {
			logger.Error("custom dictionary", zap.Error(err))
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Listen != "" {
		serveMetrics(ctx, cfg.Metrics.Listen, logger)
	}

	if *headless {
		return runHeadless(ctx, application, logger)
	}
	return runTray(ctx, application, logger)
}

// runHeadless runs one session on the main thread and stops it on a signal.
func runHeadless(ctx context.Context, application *app.App, logger *zap.Logger) int {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			application.StopSession()
		case <-done:
		}
		return nil
	})

	res, err := application.RunSession(ctx)
	close(done)
	_ = g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session failed", zap.Error(err))
		return 1
	}
	logger.Info("session ended", zap.Stringer("reason", res.Reason), zap.String("text", res.Text))
	if res.Text != "" {
		fmt.Println(res.Text)
	}
	return 0
}

// runTray blocks in the tray loop until Quit or a signal.
func runTray(ctx context.Context, application *app.App, logger *zap.Logger) int {
	t := tray.New()

	if st, err := application.Settings(); err == nil {
		t.SetSettings(st)
	} else {
		logger.Warn("load settings", zap.Error(err))
	}
	refreshHistory(t, application, logger)

	application.OnSessionEnd(func(res session.Result) {
		t.SetActive(false)
		refreshHistory(t, application, logger)
		logger.Info("session ended", zap.Stringer("reason", res.Reason))
	})
	t.OnStart(func() {
		t.SetActive(true)
		if _, err := application.StartSession(ctx); err != nil {
			logger.Warn("start session", zap.Error(err))
			t.SetActive(application.Active())
		}
	})
	t.OnStop(application.StopSession)
	t.OnQuit(application.StopSession)

	// Settings apply to the next session.
	t.OnSettings(func(st store.Settings) {
		if err := application.SaveSettings(st); err != nil {
			logger.Warn("save settings", zap.Error(err))
		}
		if saved, err := application.Settings(); err == nil {
			t.SetSettings(saved)
		}
	})
	t.OnDeleteHistory(func(id string) {
		if err := application.DeleteHistory(id); err != nil {
			logger.Warn("delete history", zap.String("id", id), zap.Error(err))
		}
		refreshHistory(t, application, logger)
	})
	t.OnClearHistory(func() {
		n, err := application.ClearHistory()
		if err != nil {
			logger.Warn("clear history", zap.Error(err))
		}
		logger.Info("history cleared", zap.Int64("removed", n))
		refreshHistory(t, application, logger)
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	return 0
}

// refreshHistory reloads the History submenu and the "Last:" label.
func refreshHistory(t *tray.Tray, application *app.App, logger *zap.Logger) {
	entries, err := application.History()
	if err != nil {
		logger.Warn("load history", zap.Error(err))
		return
	}
	t.SetHistory(entries)

	last := ""
	if len(entries) > 0 {
		last = entries[0].Text
	}
	t.SetLastTranscript(last)
}
