package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the config file",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a config file with the default settings",
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if err := config.Default().WriteFile(cfgPath, force); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.Color("Wrote:", app.Green), cfgPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config (file, then environment), secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		shown.Web.PasswordBcrypt = app.Mask(shown.Web.PasswordBcrypt)
		shown.Web.TOTPSecret = app.Mask(shown.Web.TOTPSecret)
		shown.Web.SessionKey = app.Mask(shown.Web.SessionKey)
		shown.Web.CSRFKey = app.Mask(shown.Web.CSRFKey)
		b, err := shown.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
