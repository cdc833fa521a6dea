package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/crypto"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/netutil"
	"github.com/yuzeguitarist/qrforge/internal/web"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the interactive form with live preview (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.Web.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("tls") {
			cfg.Web.TLS, _ = cmd.Flags().GetBool("tls")
		}
		srv, err := web.NewServer(cfg, log)
		if err != nil {
			return err
		}
		defer srv.Close()

		httpSrv := &http.Server{
			Addr:              cfg.Web.Listen,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		scheme := "http"
		if cfg.Web.TLS {
			cert, pin, err := crypto.LoadOrGenerate(cfg.Web.TLSCert, cfg.Web.TLSKey, netutil.HostIPs(cfg.Web.Listen))
			if err != nil {
				return fmt.Errorf("tls: %w", err)
			}
			httpSrv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
			scheme = "https"
			fmt.Fprintln(cmd.OutOrStdout(), "Certificate SHA-256:", pin)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Warn("shutdown", logger.Error(err))
			}
		}()

		if !srv.AuthEnabled() {
			log.Warn("no web.passwordBcrypt set; the form is open to anyone who can reach it")
		}
		urls, err := netutil.URLs(scheme, cfg.Web.Listen)
		if err != nil {
			return err
		}
		for _, u := range urls {
			fmt.Fprintln(cmd.OutOrStdout(), "Listening:", app.Color(u, app.Cyan))
		}
		if scheme == "https" {
			err = httpSrv.ListenAndServeTLS("", "")
		} else {
			err = httpSrv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	webCmd.Flags().String("listen", "", "listen address (default from config: 127.0.0.1:3333)")
	webCmd.Flags().Bool("tls", false, "serve https with web.tlsCert/tlsKey or a self-signed certificate")
}
