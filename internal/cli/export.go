package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/io"
	"github.com/matzehuels/adforge/pkg/pipeline"
)

// exportOpts holds options for the export command.
type exportOpts struct {
	ids         []string
	formats     []string
	preset      string
	channel     string
	quality     string
	compression int
	project     string
	title       string
	author      string
	out         string
	pick        bool
	nativePDF   bool
}

// exportCommand creates the export command for rendering variations to files.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{quality: string(export.QualityProduction), out: "."}

	cmd := &cobra.Command{
		Use:   "export [variations.json]",
		Short: "Export layout variations to print and digital files",
		Long: `Export variations produced by "adforge generate".

By default every variation is exported to its own channel as one project and
the files are bundled into a zip archive. With a single variation and
several --format flags, that variation is exported once per format instead.
--preset applies a named export preset to each variation.`,
		Example: `  adforge export variations.json --project Summer
  adforge export variations.json --id 3f2a --format png --format svg
  adforge export variations.json --preset print-production --channel a4_print
  adforge export variations.json --pick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.ids, "id", nil, "only export variations whose ID starts with this prefix (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "override the channel format: jpg, png, svg, pdf, mp4 (repeatable)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "named export preset (see adforge presets)")
	cmd.Flags().StringVar(&opts.channel, "channel", "", "channel for preset exports (default: the variation's own)")
	cmd.Flags().StringVarP(&opts.quality, "quality", "q", opts.quality, "quality tier: draft, preview, production")
	cmd.Flags().IntVar(&opts.compression, "compression", 0, "compression level 0-100")
	cmd.Flags().StringVar(&opts.project, "project", "", "project name used for the archive")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: the variation name)")
	cmd.Flags().StringVar(&opts.author, "author", "", "document author")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "output directory")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose variations interactively")
	cmd.Flags().BoolVar(&opts.nativePDF, "native-pdf", false, "render PDFs with rsvg-convert when installed")
	_ = cmd.RegisterFlagCompletionFunc("channel", c.completeChannels)
	_ = cmd.RegisterFlagCompletionFunc("preset", c.completePresets)
	_ = cmd.RegisterFlagCompletionFunc("quality", completeQualities)

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, path string, opts exportOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	vs, err := io.ImportVariations(path)
	if err != nil {
		return err
	}
	vs = filterByID(vs, opts.ids)
	if len(vs) == 0 {
		return errors.New(errors.ErrCodeNotFound, "no variations match %s", strings.Join(opts.ids, ", "))
	}
	if opts.pick {
		if vs, err = pickVariations(vs); err != nil {
			return err
		}
		if len(vs) == 0 {
			printInfo("Nothing selected")
			return nil
		}
	}

	store := artifact.NewMemory()
	runner, err := c.newRunner(ctx, runnerOptions{
		noCache: true,
		extra: []pipeline.RunnerOption{
			pipeline.WithStore(store),
			pipeline.WithRendererOptions(export.WithNativePDF(opts.nativePDF)),
		},
	})
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Exporting %d variations...", len(vs)))
	spinner.Start()
	batch, err := runExportBatch(ctx, runner, vs, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return err
	}
	for _, res := range batch.Results {
		if !res.Success {
			printError("%s → %s: %s", shortID(res.LayoutID), res.Channel, res.Error)
			continue
		}
		p, err := saveArtifact(ctx, store, *res.Artifact, opts.out)
		if err != nil {
			return err
		}
		printFile(p)
	}
	if batch.Archive != nil {
		p, err := saveArtifact(ctx, store, *batch.Archive, opts.out)
		if err != nil {
			return err
		}
		printSuccess("Archive written")
		printFile(p)
	} else if batch.ArchiveError != "" {
		printWarning("archive: %s", batch.ArchiveError)
	}

	prog.done("exported variations", "succeeded", batch.SuccessCount, "failed", batch.FailureCount, "bytes", batch.TotalSize)
	if batch.SuccessCount == 0 {
		return fmt.Errorf("all %d exports failed", batch.FailureCount)
	}
	printSuccess("Exported %d of %d", batch.SuccessCount, len(batch.Results))
	return nil
}

// runExportBatch picks the export mode from the flags.
func runExportBatch(ctx context.Context, r *pipeline.Runner, vs []*creative.LayoutVariation, opts exportOpts) (export.BatchResult, error) {
	metadata := export.Metadata{Title: opts.title, Author: opts.author}

	switch {
	case opts.preset != "":
		var batch export.BatchResult
		for _, v := range vs {
			ch := opts.channel
			if ch == "" {
				ch = v.Channel
			}
			res, err := r.ExportPreset(ctx, v, opts.preset, ch)
			if err != nil {
				return export.BatchResult{}, err
			}
			batch.Results = append(batch.Results, res)
			if res.Success {
				batch.SuccessCount++
				batch.TotalSize += res.Size
			} else {
				batch.FailureCount++
			}
		}
		return batch, nil

	case len(vs) == 1 && len(opts.formats) > 1:
		v := vs[0]
		if metadata.Title == "" {
			metadata.Title = v.Name
		}
		cfgs := make([]export.Config, len(opts.formats))
		for i, f := range opts.formats {
			cfgs[i] = export.Config{
				Channel:     v.Channel,
				Quality:     export.Quality(opts.quality),
				Compression: opts.compression,
				Format:      channel.Format(f),
				Metadata:    metadata,
			}
		}
		return r.ExportFormats(ctx, v, cfgs), nil

	default:
		popts := export.ProjectOptions{
			Name:        opts.project,
			Quality:     export.Quality(opts.quality),
			Compression: opts.compression,
			Metadata:    metadata,
		}
		if len(opts.formats) == 1 {
			popts.Format = channel.Format(opts.formats[0])
		}
		if popts.Name == "" && len(vs) == 1 {
			popts.Name = vs[0].Name
		}
		return r.ExportProject(ctx, vs, popts), nil
	}
}

// saveArtifact copies a stored artifact into dir under its file name.
func saveArtifact(ctx context.Context, store artifact.Store, ref artifact.Ref, dir string) (string, error) {
	data, _, err := store.Get(ctx, ref.ID)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, ref.Name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

func filterByID(vs []*creative.LayoutVariation, prefixes []string) []*creative.LayoutVariation {
	if len(prefixes) == 0 {
		return vs
	}
	var out []*creative.LayoutVariation
	for _, v := range vs {
		for _, p := range prefixes {
			if strings.HasPrefix(v.ID, p) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
