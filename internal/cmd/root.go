package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/config"
	"github.com/yuzeguitarist/qrforge/internal/logger"
)

// skipConfig marks commands that must run even when the config file is
// broken; they get defaults instead.
const skipConfig = "skip-config"

var (
	cfgPath  string
	logLevel string

	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           app.Name,
	Short:         "qrforge - QR codes as PNG, JPEG, BMP or SVG, with rounded modules and logos",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load %s: %w", app.EnvFile, err)
		}
		c := config.Default()
		if cmd.Annotations[skipConfig] == "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			c = loaded
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		l, err := logger.New(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format)
		if err != nil {
			return err
		}
		cfg, log = c, l
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, app.Color("error:", app.Red), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", app.ConfigPath(), "config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(wifiCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(totpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(webCmd)
}
