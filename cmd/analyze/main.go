package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tw93/mole/internal/config"
	"github.com/tw93/mole/internal/dirstats"
	"github.com/tw93/mole/internal/lister"
	"github.com/tw93/mole/internal/logging"
	"github.com/tw93/mole/internal/metrics"
	"github.com/tw93/mole/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	workers := flag.Int("workers", cfg.Workers, "concurrent traversal workers (0 = auto)")
	watchDirs := flag.Bool("watch", cfg.Watch, "refresh totals when the shown directory changes")
	metricsAddr := flag.String("metrics", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	printMode := flag.Bool("print", false, "print totals for the given directories and exit")
	flag.Parse()

	logOutput := cfg.LogOutput
	if logOutput == "" {
		logOutput = defaultLogOutput(*printMode)
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: logOutput}); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logging.L().Info("metrics server listening", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.L().Error("metrics server error", zap.Error(err))
			}
		}()
	}

	engine := dirstats.New(lister.OS{}, dirstats.Options{Workers: *workers, Logger: logging.L()})
	defer engine.Close()

	if *printMode {
		roots := flag.Args()
		if len(roots) == 0 {
			roots = []string{targetPath(cfg)}
		}
		if err := printTotals(os.Stdout, engine, roots); err != nil {
			fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
			os.Exit(1)
		}
		return
	}

	roots, err := resolveRoots([]string{targetPath(cfg)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}

	var (
		watcher *watch.Watcher
		changes chan string
	)
	if *watchDirs {
		changes = make(chan string, 1)
		watcher, err = watch.New(lister.OS{}, func(dir string) {
			select {
			case changes <- dir:
			default:
			}
		}, logging.L())
		if err != nil {
			logging.L().Warn("watcher disabled", zap.Error(err))
			watcher, changes = nil, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watcher != nil {
		defer watcher.Close()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logging.L().Warn("watcher stopped", zap.Error(err))
			}
		}()
	}

	p := tea.NewProgram(newModel(engine, lister.OS{}, watcher, changes, roots[0]), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer error: %v\n", err)
		os.Exit(1)
	}
}

func targetPath(cfg *config.Config) string {
	if flag.NArg() > 0 {
		return flag.Arg(0)
	}
	if cfg.Path != "" {
		return cfg.Path
	}
	return "."
}

// defaultLogOutput keeps logs off the terminal while the TUI owns it.
func defaultLogOutput(printMode bool) string {
	if printMode {
		return "stderr"
	}
	dir, err := getCacheDir()
	if err != nil {
		return os.DevNull
	}
	return filepath.Join(dir, "analyze.log")
}

func getCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	cacheDir := filepath.Join(home, ".cache", "mole")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", err
	}
	return cacheDir, nil
}
