package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/payload"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Render text as a QR code",
	Example: `  qrforge create --text "HELLO" --out hello.png
  qrforge create --text "https://example.com" --rounded --out qr.svg
  echo -n data | qrforge create --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		fromStdin, _ := cmd.Flags().GetBool("stdin")
		if fromStdin {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = strings.TrimRight(string(b), "\r\n")
		}
		if text == "" {
			return fmt.Errorf("--text or --stdin required")
		}
		return emit(cmd, styledRequest(cmd, text))
	},
}

var wifiCmd = &cobra.Command{
	Use:   "wifi",
	Short: "Render WiFi credentials as a QR code phones can join from",
	RunE: func(cmd *cobra.Command, args []string) error {
		ssid, _ := cmd.Flags().GetString("ssid")
		password, _ := cmd.Flags().GetString("password")
		security, _ := cmd.Flags().GetString("security")
		text, err := payload.WiFi(strings.TrimSpace(ssid), strings.TrimSpace(password), security)
		if err != nil {
			return err
		}
		log.Debug("wifi payload", logger.SSID(ssid), logger.Secret("password", password))
		return emit(cmd, styledRequest(cmd, text))
	},
}

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Render the base64 encoding of a file as a QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			return fmt.Errorf("--in required")
		}
		text, err := payload.FileBase64(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Content:", payload.Excerpt(text, 80))
		return emit(cmd, styledRequest(cmd, text))
	},
}

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Render an authenticator enrolment (otpauth://) QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, _ := cmd.Flags().GetString("issuer")
		account, _ := cmd.Flags().GetString("account")
		secret, _ := cmd.Flags().GetString("secret")
		uri, secret, err := payload.TOTP(payload.TOTPOptions{Issuer: issuer, Account: account, Secret: secret})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Secret (store it safely):", secret)
		return emit(cmd, styledRequest(cmd, uri))
	},
}

func init() {
	createCmd.Flags().String("text", "", "content to encode")
	createCmd.Flags().Bool("stdin", false, "read the content from stdin")

	wifiCmd.Flags().String("ssid", "", "network name")
	wifiCmd.Flags().String("password", "", "network password")
	wifiCmd.Flags().String("security", "WPA", "WPA, WEP or nopass")

	fileCmd.Flags().String("in", "", "file to encode")

	totpCmd.Flags().String("issuer", app.Name, "issuer shown in the authenticator")
	totpCmd.Flags().String("account", "", "account name")
	totpCmd.Flags().String("secret", "", "base32 secret (empty: generate one)")

	for _, c := range []*cobra.Command{createCmd, wifiCmd, fileCmd, totpCmd} {
		addStyleFlags(c)
	}
}
