package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/quesurifn/rasp-ics/pkg/config"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg     appConfig
	cfgFile string
	verbose bool
	debug   bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "rasp",
	Short:         "REA schedule scraper and calendar exporter",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if debug {
			zcfg = zap.NewDevelopmentConfig()
		}
		l, err := zcfg.Build()
		if err != nil {
			return err
		}
		logger = l

		loader := config.New(&config.Settings{
			ENVPrefix: "RASP",
			EnvFiles:  []string{".env"},
			Logger:    logger,
		})
		if err := loader.Load(&cfg, cfgFile); err != nil {
			return err
		}

		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warn("unknown log level", zap.String("level", cfg.LogLevel))
			level = zapcore.InfoLevel
		}
		if verbose || debug {
			level = zapcore.DebugLevel
		}
		zcfg.Level.SetLevel(level)
		if msk.IsFallback() {
			logger.Warn("time zone database unavailable, using fixed UTC+3", zap.String("zone", msk.Name))
		}
		logger.Debug("configuration loaded", zap.Strings("files", loader.Files()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		syncLogger()
	},
}

func syncLogger() {
	err := logger.Sync()
	if err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
		os.Stderr.WriteString(err.Error() + "\n")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "development logging")

	rootCmd.AddCommand(exportCmd, weekCmd, serveCmd, botCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("command failed", zap.Error(err))
		syncLogger()
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
