package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/xhad/jaundice/internal/models"
	"github.com/xhad/jaundice/pkg/analyzer"
	"github.com/xhad/jaundice/pkg/report"
)

var defaultArticles = []string{
	"https://inosmi.ru/20230322/kitay-261582482.html",
	"https://inosmi.ru/20230323/ukraina-261622481.html",
	"https://inosmi.ru/20230323/konflikt-261628210.html",
	"https://inosmi.ru/20230323/lavra-261621781.html",
	"https://inosmi.ru/20230323/ssha-261613436.html",
}

var scoreFlags struct {
	fetchTimeout   time.Duration
	processTimeout time.Duration
	noColor        bool
	noProgress     bool
	json           bool
}

var scoreCmd = &cobra.Command{
	Use:   "score [urls...]",
	Short: "Score up to 10 articles and print the results",
	Long: `score runs one pipeline per URL concurrently and prints a block per
article followed by a summary. Without arguments a built-in list of
inosmi.ru articles is scored.`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.DurationVar(&scoreFlags.fetchTimeout, "fetch-timeout", 0, "Per article download timeout (overrides config)")
	f.DurationVar(&scoreFlags.processTimeout, "process-timeout", 0, "Per article analysis timeout (overrides config)")
	f.BoolVar(&scoreFlags.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&scoreFlags.noProgress, "no-progress", false, "Disable the progress bar")
	f.BoolVar(&scoreFlags.json, "json", false, "Print results as JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	urls := args
	if len(urls) == 0 {
		urls = defaultArticles
	}
	if len(urls) > analyzer.MaxURLs {
		return analyzer.ErrTooManyURLs
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useColor := cfg.UI.Color && !scoreFlags.noColor && !color.NoColor
	showProgress := cfg.UI.Progress && !scoreFlags.noProgress && !scoreFlags.json

	var bar *progressbar.ProgressBar
	opts := []analyzer.Option{
		analyzer.WithFetchTimeout(scoreFlags.fetchTimeout),
		analyzer.WithProcessTimeout(scoreFlags.processTimeout),
	}
	if showProgress {
		bar = getProgressBar(len(urls), " Scoring articles")
		opts = append(opts, analyzer.WithOutcomeHook(func(models.ArticleOutcome) {
			bar.Add(1)
		}))
	}

	a, err := bootstrap(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	outcomes, err := a.analyzer.Run(ctx, urls)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if a.history != nil {
		if err := a.history.Append(context.WithoutCancel(ctx), outcomes); err != nil {
			a.logger.Warn("failed to record history", "error", err)
		}
	}

	out := cmd.OutOrStdout()
	if scoreFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report.JSON(outcomes))
	}

	if err := report.Text(out, outcomes, report.TextOptions{Color: useColor, Elapsed: true}); err != nil {
		return err
	}

	summary := report.Summarize(outcomes).String()
	if useColor {
		summary = color.CyanString(summary)
	}
	_, err = fmt.Fprintf(out, "\n%s\n", summary)
	return err
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("articles"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
