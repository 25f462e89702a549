package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/project"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (several formats)
	formats  []string // dot, svg, png, json
	title    string   // diagram caption; defaults to the project name
	detailed bool     // ids and earliest finish in node labels
	noCache  bool     // bypass the diagram cache entirely
	refresh  bool     // re-render even if a cached diagram exists
}

// renderCommand creates the render command, which calculates a project file
// and writes the network diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the activity network of a project file",
		Long: `Render calculates the schedule of a project file and draws the network
with Graphviz. Critical activities and the edges between them are drawn in red.

The output format defaults to render.format from the config file (svg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr == "" {
				formatsStr = c.Config.Render.Format
			}
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Render.Detailed
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg, png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title (default: project name)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show activity ids and earliest finish")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the diagram cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached diagrams and render again")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	p, err := project.LoadProject(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	title := opts.title
	if title == "" {
		title = p.Name
	}
	res, err := runner.Execute(ctx, p.Network, pipeline.Options{
		Title:     title,
		Formats:   opts.formats,
		Detailed:  opts.detailed,
		Calculate: true,
		Refresh:   opts.refresh,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(opts.formats, ", ")))

	paths := outputPaths(opts.output, input, opts.formats)
	for _, format := range opts.formats {
		if filepath.Clean(paths[format]) == filepath.Clean(input) {
			return errs.New(errs.ErrCodeInvalidInput, "output %s would overwrite the project file; pass -o", paths[format])
		}
	}
	for _, format := range opts.formats {
		if err := writeFile(paths[format], res.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess(w, "Project duration %s", StyleNumber.Render(num(res.Calculation.ProjectDuration)))
	for _, format := range opts.formats {
		printFile(w, paths[format])
	}
	printStats(w, res.Stats.Activities, res.Stats.Edges, res.CacheInfo.AllHit())
	return nil
}

// basePath derives the base output path. Without -o it is the input path
// minus its extension; a format extension on -o is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit -o is written there verbatim.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
