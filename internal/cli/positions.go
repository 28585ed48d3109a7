package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// positionsCommand creates the positions command that shows a positions
// file written by extract.
func (c *CLI) positionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "positions <merge_definitions.json>",
		Short:             "Show the placeholders stored in a positions file",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFileArg("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositions(cmd.Context(), args[0])
		},
	}
}

func runPositions(ctx context.Context, path string) error {
	logger := loggerFromContext(ctx)

	list, err := placeholder.ImportJSON(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read positions")
	}
	logger.Debug("Read positions", "path", path, "placeholders", len(list))

	if len(list) == 0 {
		printWarning("%s lists no placeholders", path)
		return nil
	}
	fmt.Fprintln(stdout, renderPositionsTable(list))
	return nil
}

// renderPositionsTable renders one row per placeholder in file order.
func renderPositionsTable(list []placeholder.Placeholder) string {
	rows := make([][]string, 0, len(list))
	for i, p := range list {
		image := "-"
		if p.PredefinedImage != nil {
			image = *p.PredefinedImage
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Description,
			fmt.Sprintf("%d,%d", p.PosX, p.PosY),
			fmt.Sprintf("%dx%d", p.Width, p.Height),
			strconv.Itoa(p.Rotate),
			p.ImageFilter,
			image,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Description", "Position", "Size", "Rotate", "Filter", "Image").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 || col >= 4 {
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}
