package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/io"
	"github.com/matzehuels/adforge/pkg/layout"
	"github.com/matzehuels/adforge/pkg/pipeline"
)

// generateOpts holds options for the generate command.
type generateOpts struct {
	output   string
	channels []string
	styles   []string
	noCache  bool
	refresh  bool
	judgeURL string
}

// generateCommand creates the generate command for composing variations.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{output: "variations.json"}

	cmd := &cobra.Command{
		Use:   "generate [brief.json]",
		Short: "Compose and score layout variations from a creative brief",
		Long: `Compose one layout variation per (style, channel) pair of a creative brief.

Every variation is scored for brand compliance and predicted performance.
Results are cached, so running the same brief twice is instant unless
--refresh or --no-cache is given.`,
		Example: `  adforge generate brief.json
  adforge generate brief.json --channel instagram_post --style bold -o summer.json
  adforge generate brief.json --judge-url https://judge.internal/v1/judge`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file for the variations")
	cmd.Flags().StringSliceVar(&opts.channels, "channel", nil, "override the brief's channels (repeatable)")
	cmd.Flags().StringSliceVar(&opts.styles, "style", nil, "styles to compose: minimal, bold, elegant (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompose even when a cached result exists")
	cmd.Flags().StringVar(&opts.judgeURL, "judge-url", "", "HTTP judgment endpoint used for compliance scoring")
	_ = cmd.RegisterFlagCompletionFunc("channel", c.completeChannels)
	_ = cmd.RegisterFlagCompletionFunc("style", completeStyles)

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, path string, opts generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	req, err := io.ImportBrief(path)
	if err != nil {
		return err
	}
	popts := pipeline.Options{
		Territory:  req.Territory,
		Assets:     req.Assets,
		Guidelines: req.Guidelines,
		Channels:   req.Channels,
		Styles:     req.Styles,
		Refresh:    opts.refresh,
		Logger:     logger,
	}
	if len(opts.channels) > 0 {
		popts.Channels = opts.channels
	}
	if len(opts.styles) > 0 {
		popts.Styles = make([]layout.Style, len(opts.styles))
		for i, s := range opts.styles {
			popts.Styles[i] = layout.ParseStyle(s)
		}
	}

	runner, err := c.newRunner(ctx, runnerOptions{noCache: opts.noCache, judgeURL: opts.judgeURL})
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Composing variations...")
	spinner.Start()
	res, err := runner.Generate(ctx, popts)
	if err != nil {
		spinner.StopWithError("Generate failed")
		return err
	}
	spinner.SetMessage("Writing " + opts.output + "...")
	err = io.ExportVariations(res.Variations, opts.output)
	spinner.Stop()
	if err != nil {
		return err
	}

	prog.done("generated variations", "count", res.Stats.Variations, "cached", res.CacheInfo.GenerateHit)
	printSuccess("Variations generated")
	printFile(opts.output)
	printStats(res.Stats.Variations, res.Stats.Failures, res.CacheInfo.GenerateHit)
	fmt.Println(renderTable(variationHeaders, variationRows(res.Variations)))
	for _, f := range res.Failures {
		printWarning("%s/%s: %s", f.Style, f.Channel, f.Error)
	}
	printNextStep("Export them", "adforge export "+opts.output+" --project NAME")
	return nil
}

var variationHeaders = []string{"ID", "Style", "Channel", "Size", "Compliance", "Performance"}

func variationRows(vs []*creative.LayoutVariation) [][]string {
	rows := make([][]string, len(vs))
	for i, v := range vs {
		rows[i] = []string{
			shortID(v.ID),
			v.Style,
			v.Channel,
			fmt.Sprintf("%d×%d", v.Width, v.Height),
			scoreStyle(v.Compliance.Overall).Render(strconv.Itoa(v.Compliance.Overall)),
			scoreStyle(v.PerformanceScore).Render(strconv.Itoa(v.PerformanceScore)),
		}
	}
	return rows
}

// shortID abbreviates layout IDs for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
