package main

import (
	"log/slog"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	prod       bool
	cpuProfile string

	logger  *slog.Logger
	sync    func() error
	profile interface{ Stop() }
}

func newLogger(prod bool) (*slog.Logger, func() error) {
	var zapLogger *zap.Logger
	if prod {
		zapLogger = zap.Must(zap.NewProduction())
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.Must(config.Build())
	}
	return slog.New(zapslog.NewHandler(zapLogger.Core())), zapLogger.Sync
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "forecast-insights",
		Short:         "Build and inspect responsible AI insights for forecasting models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ro.logger, ro.sync = newLogger(ro.prod)
			slog.SetDefault(ro.logger)
			if ro.cpuProfile != "" {
				ro.profile = profile.Start(profile.CPUProfile, profile.ProfilePath(ro.cpuProfile), profile.Quiet)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ro.profile != nil {
				ro.profile.Stop()
			}
			if ro.sync != nil {
				// stderr cannot always be synced
				_ = ro.sync()
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&ro.prod, "prod", false, "log as json instead of the development console format")
	cmd.PersistentFlags().StringVar(&ro.cpuProfile, "cpuprofile", "", "directory to write a cpu profile to")

	cmd.AddCommand(newBuildCmd(ro), newInspectCmd(ro))
	return cmd
}
