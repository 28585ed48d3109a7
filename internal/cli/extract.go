package cli

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/pipeline"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	config      string // prior collage configuration (optional)
	group       string // placeholder group name
	outputImage string // background image path
	outputJSON  string // positions file path (empty: next to the image)
	tui         bool   // show the interactive progress view
	print       bool   // print the positions snippet when done
}

// extractCommand creates the extract command that runs the full pipeline.
func (c *CLI) extractCommand() *cobra.Command {
	opts := extractOpts{
		group:       pipeline.DefaultGroup,
		outputImage: pipeline.DefaultOutputImage,
	}

	cmd := &cobra.Command{
		Use:   "extract <document.psd>",
		Short: "Extract placeholder positions and render the background",
		Long: `Extract reads the placeholder group of a PSD template and

  - writes the placeholder positions as JSON (merge_definitions.json),
  - merges them into the collage actions of a photobooth config, writing
    <config>.updated next to the original,
  - renders the template with the placeholder group hidden.

Flags override values from the settings file; the settings file overrides
the built-in defaults.`,
		Example: `  psdlayout extract template.psd
  psdlayout extract template.psd -c config/config.json -o userdata/canvas_front.png
  psdlayout extract template.psd --tui --print`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			settings, err := c.settingsFor(logger)
			if err != nil {
				return err
			}
			opts.applySettings(cmd, settings)
			return c.runExtract(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "photobooth config to merge into (optional)")
	cmd.Flags().StringVarP(&opts.group, "group", "g", opts.group, "layer group holding the placeholders")
	cmd.Flags().StringVarP(&opts.outputImage, "output-image", "o", opts.outputImage, "background image (.png, .jpg, .tif, .bmp)")
	cmd.Flags().StringVarP(&opts.outputJSON, "output-json", "j", "", "positions file (default: merge_definitions.json next to the output image)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show an interactive progress view")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the positions to stdout when done")
	registerCompletions(cmd)

	return cmd
}

// applySettings fills every flag that was not set explicitly from s.
func (o *extractOpts) applySettings(cmd *cobra.Command, s Settings) {
	flags := cmd.Flags()
	overlay(flags, "config", &o.config, s.Config)
	overlay(flags, "group", &o.group, s.Group)
	overlay(flags, "output-image", &o.outputImage, s.OutputImage)
	overlay(flags, "output-json", &o.outputJSON, s.OutputJSON)
}

// pipelineOptions converts the flags into pipeline options.
func (o *extractOpts) pipelineOptions(psdPath string, logger *log.Logger) pipeline.Options {
	return pipeline.Options{
		PSDPath:     psdPath,
		ConfigPath:  o.config,
		GroupName:   o.group,
		OutputImage: o.outputImage,
		OutputJSON:  o.outputJSON,
		Logger:      logger,
	}
}

func (c *CLI) runExtract(ctx context.Context, psdPath string, opts extractOpts) error {
	logger := loggerFromContext(ctx)
	runner := c.newRunner()

	var (
		result *pipeline.Result
		err    error
	)
	if opts.tui {
		// The progress view owns the terminal; keep log lines out of it.
		result, err = runWithProgress(ctx, runner, opts.pipelineOptions(psdPath, newQuietLogger()))
	} else {
		prog := newProgress(logger)
		result, err = runner.Execute(ctx, opts.pipelineOptions(psdPath, logger))
		if err == nil {
			prog.done("Extraction finished")
		}
	}
	if err != nil {
		if groups, ok := errors.NotFoundGroups(err); ok {
			printGroupHint(opts.group, groups)
		}
		return err
	}

	printExtractSummary(result)
	if opts.print {
		printNewline()
		return placeholder.WriteJSON(result.Placeholders, stdout)
	}
	return nil
}

// printGroupHint lists the groups a document does have after a failed
// lookup.
func printGroupHint(name string, groups []string) {
	printError("Group %s not found", StyleHighlight.Render(name))
	if len(groups) == 0 {
		printDetail("the document has no layer groups")
		return
	}
	printDetail("available groups:")
	for _, g := range groups {
		printDetail("  %s", g)
	}
}

// printExtractSummary prints the outputs and warnings of a finished run.
func printExtractSummary(r *pipeline.Result) {
	printSuccess("Extracted %s placeholders", StyleNumber.Render(strconv.Itoa(len(r.Placeholders))))
	printFile(r.OutputJSON)
	printFile(r.OutputImage)

	switch m := r.Merge; {
	case m == nil:
		// The failure is reported with the warnings below.
	case m.Skipped:
		printInfo("Config update skipped: %s", m.Reason)
	default:
		printSuccess("Updated %s collage actions", StyleNumber.Render(strconv.Itoa(m.UpdatedActions)))
		printFile(m.OutputPath)
		if m.Mismatched > 0 {
			printWarning("%d actions had a different number of placeholders; their image filters were reset", m.Mismatched)
		}
		printNextStep("Review and replace the original", "mv "+m.OutputPath+" "+m.ConfigPath)
	}

	for _, w := range r.Warnings {
		printWarning("%s", errors.UserMessage(w))
	}
}
