// canvaspdf captures a document shown in a browser-hosted viewer, one
// canvas screenshot per page, and saves it as a PDF.
//
// Usage:
//
//	canvaspdf export [flags] <url>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	canvaspdf "github.com/porticus-lab/go-canvas-pdf"
	"github.com/porticus-lab/go-canvas-pdf/internal/config"
	"github.com/porticus-lab/go-canvas-pdf/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "canvaspdf",
		Short:         "Save canvas-rendered documents from a web viewer as PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file path")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.AddCommand(newExportCmd())
	return root
}

type exportFlags struct {
	pages        int
	output       string
	keepRaw      bool
	keepImages   bool
	collage      bool
	driver       string
	chromePath   string
	noSandbox    bool
	headful      bool
	stealth      bool
	userDataDir  string
	autoDownload bool
}

func newExportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export <url>",
		Short: "Capture every page of the document at url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.pages, "pages", "n", 0, "number of pages in the document (required)")
	fl.StringVarP(&f.output, "output", "o", "output.pdf", "destination PDF file")
	fl.BoolVar(&f.keepRaw, "keep-raw-imgs", false, "keep the raw screenshots in <output>_raw_images/")
	fl.BoolVar(&f.keepImages, "keep-imgs", false, "keep the trimmed frames in <output>_images/")
	fl.BoolVar(&f.collage, "create-collage", false, "write a preview collage to <output>_collage.png")
	fl.StringVar(&f.driver, "driver", "", "browser driver: chromedp or rod")
	fl.StringVar(&f.chromePath, "chrome-path", "", "Chrome or Chromium executable")
	fl.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fl.BoolVar(&f.headful, "headful", false, "show the browser window, e.g. to sign in")
	fl.BoolVar(&f.stealth, "stealth", false, "mask automation fingerprints (rod driver)")
	fl.StringVar(&f.userDataDir, "user-data-dir", "", "Chrome profile directory to reuse")
	fl.BoolVar(&f.autoDownload, "auto-download", false, "download Chromium if none is configured")
	_ = cmd.MarkFlagRequired("pages")
	return cmd
}

func runExport(cmd *cobra.Command, url string, f exportFlags) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg, f)
	verbose, _ := cmd.Flags().GetBool("verbose")
	showBar := progressMode(&cfg, verbose)
	log := logging.New(cfg.Log)

	if f.pages <= 0 {
		return fmt.Errorf("--pages must be positive, got %d", f.pages)
	}

	ctx := cmd.Context()
	browser, err := canvaspdf.Launch(ctx, cfg.LaunchOptions()...)
	if err != nil {
		return err
	}
	defer browser.Close()

	log.Info().Str("url", url).Msg("opening document")
	session, err := browser.Open(ctx, url, cfg.Export.CanvasSelector)
	if err != nil {
		return err
	}

	opts := append(cfg.ExportOptions(), canvaspdf.WithLogger(log))
	var bar *progressbar.ProgressBar
	if showBar {
		bar = progressbar.NewOptions(f.pages,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("pages"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, canvaspdf.WithProgress(func(page, _ int) { _ = bar.Set(page) }))
	}

	res, err := canvaspdf.NewExporter(opts...).Export(ctx, session, f.pages, f.output)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		if errors.Is(err, canvaspdf.ErrSurfaceLost) {
			return fmt.Errorf("%w (is the document still open in the viewer?)", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %s (%d pages, %s)\n", res.Path, res.Pages, res.Strategy)
	if res.Status == canvaspdf.Incomplete {
		fmt.Fprintf(out, "Navigation stopped early: %d of %d pages captured.\n", res.Pages, f.pages)
	}
	if res.ArtifactErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.ArtifactErr)
	}
	return nil
}

// progressMode reports whether the page progress bar is drawn. The bar
// and the logger share stderr: at info level the logger is raised to warn
// while the bar runs, and at debug level (or with --verbose) the log lines
// replace the bar.
func progressMode(cfg *config.Config, verbose bool) bool {
	if verbose {
		cfg.Log.Level = "debug"
	}
	switch lvl := logging.ParseLevel(cfg.Log.Level); {
	case lvl < zerolog.InfoLevel:
		return false
	case lvl == zerolog.InfoLevel:
		cfg.Log.Level = "warn"
	}
	return true
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f exportFlags) {
	changed := cmd.Flags().Changed
	if changed("keep-raw-imgs") {
		cfg.Export.Artifacts.KeepRawImages = f.keepRaw
	}
	if changed("keep-imgs") {
		cfg.Export.Artifacts.KeepCroppedImages = f.keepImages
	}
	if changed("create-collage") {
		cfg.Export.Artifacts.CreateCollage = f.collage
	}
	if changed("driver") {
		cfg.Browser.Driver = f.driver
	}
	if changed("chrome-path") {
		cfg.Browser.ChromePath = f.chromePath
	}
	if changed("no-sandbox") {
		cfg.Browser.NoSandbox = f.noSandbox
	}
	if changed("headful") {
		cfg.Browser.Headless = !f.headful
	}
	if changed("stealth") {
		cfg.Browser.Stealth = f.stealth
	}
	if changed("user-data-dir") {
		cfg.Browser.UserDataDir = f.userDataDir
	}
	if changed("auto-download") {
		cfg.Browser.AutoDownload = f.autoDownload
	}
}
