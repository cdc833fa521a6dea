package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuzeguitarist/qrforge/internal/app"
	"github.com/yuzeguitarist/qrforge/internal/logger"
	"github.com/yuzeguitarist/qrforge/internal/render"
	"github.com/yuzeguitarist/qrforge/internal/service"
)

// addStyleFlags registers the output and style flags shared by every
// rendering command. Defaults come from the config, so the flag defaults
// here are only shown in help.
func addStyleFlags(cmd *cobra.Command) {
	d := service.DefaultRequest()
	f := cmd.Flags()
	f.String("out", "", "output file; the extension picks the format (empty: print to terminal)")
	f.String("kind", d.Kind, "format when --out has no known extension: png, jpg, bmp or svg")
	f.Int("scale", d.Scale, "pixels per module for svg output")
	f.Int("module-size", d.ModuleSize, "pixels per module for raster output")
	f.Int("border", d.Border, "quiet zone in modules")
	f.String("error", d.Level, "error correction level: L, M, Q or H")
	f.String("dark", d.Dark, "dark module color (#rrggbb)")
	f.String("light", d.Light, "background color (#rrggbb)")
	f.Bool("rounded", false, "draw modules as circles")
	f.String("logo", "", "image to place in the center (raster only)")
	f.Float64("logo-scale", d.LogoScale, "largest logo side relative to the canvas")
}

// styledRequest starts from the configured render defaults and applies only
// the flags the user actually set.
func styledRequest(cmd *cobra.Command, text string) service.Request {
	req := cfg.Render.Request()
	req.Text = text
	f := cmd.Flags()
	if f.Changed("out") {
		req.Out, _ = f.GetString("out")
	}
	if f.Changed("kind") {
		req.Kind, _ = f.GetString("kind")
	}
	if f.Changed("scale") {
		req.Scale, _ = f.GetInt("scale")
	}
	if f.Changed("module-size") {
		req.ModuleSize, _ = f.GetInt("module-size")
	}
	if f.Changed("border") {
		req.Border, _ = f.GetInt("border")
	}
	if f.Changed("error") {
		req.Level, _ = f.GetString("error")
	}
	if f.Changed("dark") {
		req.Dark, _ = f.GetString("dark")
	}
	if f.Changed("light") {
		req.Light, _ = f.GetString("light")
	}
	if f.Changed("rounded") {
		req.Rounded, _ = f.GetBool("rounded")
	}
	if f.Changed("logo") {
		req.Logo, _ = f.GetString("logo")
	}
	if f.Changed("logo-scale") {
		req.LogoScale, _ = f.GetFloat64("logo-scale")
	}
	return req
}

// emit renders req. With an output path the file is written and reported;
// otherwise the symbol is printed to the terminal.
func emit(cmd *cobra.Command, req service.Request) error {
	res, err := service.Create(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Path == "" {
		return render.Terminal(out, res.Matrix, req.Border)
	}
	log.Debug("written", logger.Path(res.Path), logger.Format(string(res.Artifact.Format)))
	fmt.Fprintln(out, app.Color("Wrote:", app.Green), res.Path)
	return nil
}
