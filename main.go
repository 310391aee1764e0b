package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	Nd "github.com/kalin91/nvmonitor/display"
	No "github.com/kalin91/nvmonitor/obvy"
	Ns "github.com/kalin91/nvmonitor/server"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	addr       string
	logPath    string
	exportOut  string
	exportFrom time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nvmonitor",
		Short: "Live GPU chart in the terminal",
		Long: `nvmonitor reads GPU samples as JSON lines, from stdin by default,
and draws a scrolling chart of utilization, memory, temperature and fan.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), Nd.StartTUI)
		},
	}

	webCmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the chart over HTTP without a terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), Nd.StartWebNoTUI)
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write archived samples to a spreadsheet",
		RunE:  export,
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "nvmonitor.xlsx", "Output workbook path")
	exportCmd.Flags().DurationVar(&exportFrom, "since", time.Hour, "How far back to export")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "HTTP API address, e.g. :8090")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Log file, the terminal chart owns stderr")
	rootCmd.AddCommand(webCmd, exportCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setLogger sends logs to logPath, or stderr when unset
func setLogger() (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		out = f
		closer = func() { _ = f.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer, nil
}

// loadConfig reads the file if given, then the environment, then flags
func loadConfig() (*Ns.Config, error) {
	cfg := Ns.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = Ns.LoadConfigFileName(configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if addr != "" {
		cfg.HTTP.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, start func(context.Context, *Ns.Config, io.Reader) error) error {
	closeLog, err := setLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Problem loading config", slog.Any("Error", err))
		return err
	}

	shutdown, err := No.InitOTel(cfg.Tracing)
	if err != nil {
		slog.Error("Problem starting tracing", slog.Any("Error", err))
		return err
	}
	defer shutdown()

	return start(ctx, cfg, os.Stdin)
}

func export(cmd *cobra.Command, args []string) error {
	closeLog, err := setLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Archive.Path == "" {
		return errors.New("export needs an archive path, set archive.path or NVMONITOR_ARCHIVE")
	}

	m, err := Ns.NewMonitor(cfg, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", exportOut, err)
	}
	defer f.Close()

	end := time.Now()
	if err := m.ExportXLSX(f, end.Add(-exportFrom), end); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	slog.Info("Exported archive", slog.String("file", exportOut), slog.Duration("since", exportFrom))
	return nil
}
