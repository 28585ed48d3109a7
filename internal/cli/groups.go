package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdlayout/pkg/pipeline"
)

// maxListedNames caps the placeholder names shown per group.
const maxListedNames = 4

// groupsCommand creates the groups command that lists a document's layer
// groups and what extracting each of them would produce.
func (c *CLI) groupsCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "groups <document.psd>",
		Short: "List the layer groups of a document and their placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroups(cmd.Context(), args[0], target)
		},
	}
	cmd.Flags().StringVarP(&target, "group", "g", pipeline.DefaultGroup, "group to highlight")
	registerCompletions(cmd)

	return cmd
}

func runGroups(ctx context.Context, path, target string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newDocumentSpinner(ctx, path)
	spinner.Start()
	groups, err := pipeline.Inspect(path)
	spinner.Stop()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Read %d groups", len(groups)))

	if len(groups) == 0 {
		printWarning("%s has no layer groups", path)
		return nil
	}
	fmt.Fprintln(stdout, renderGroupTable(groups, target))
	return nil
}

// renderGroupTable renders groups as a table. Nested groups are indented
// and groups named target are highlighted.
func renderGroupTable(groups []pipeline.GroupSummary, target string) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		names := make([]string, 0, len(g.Placeholders))
		for _, p := range g.Placeholders {
			names = append(names, p.Description)
		}
		if len(names) > maxListedNames {
			names = append(names[:maxListedNames], fmt.Sprintf("+%d more", len(g.Placeholders)-maxListedNames))
		}
		rows = append(rows, []string{
			strings.Repeat("  ", g.Depth) + g.Name,
			strconv.Itoa(len(g.Placeholders)),
			strings.Join(names, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Slots", "Placeholders").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(groups) {
				return base
			}
			if groups[row].Name == target {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}
