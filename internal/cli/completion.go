package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/psdlayout/pkg/pipeline"
)

// File extensions offered by shell completion.
var (
	documentExts = []string{"psd", "psb"}
	configExts   = []string{"json", "yaml", "yml"}
	imageExts    = []string{"png", "jpg", "jpeg", "tif", "tiff", "bmp"}
)

// completionFunc is the signature cobra expects for argument and flag
// completion.
type completionFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for psdlayout.

Completion offers .psd templates for the document argument, config files
for --config, image files for --output-image and the layer groups of the
named document for --group.

  bash:        source <(psdlayout completion bash)
  zsh:         psdlayout completion zsh > "${fpath[1]}/_psdlayout"
  fish:        psdlayout completion fish > ~/.config/fish/completions/psdlayout.fish
  powershell:  psdlayout completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeFileArg completes the first positional argument with files
// carrying one of exts.
func completeFileArg(exts ...string) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeFileFlag completes a flag value with files carrying one of exts.
func completeFileFlag(exts ...string) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeGroupFlag completes --group with the layer groups of the document
// named by the first argument. Nothing is offered until the document is
// known or when it cannot be read.
func completeGroupFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	groups, err := pipeline.Inspect(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(groups))
	seen := make(map[string]bool)
	for _, g := range groups {
		if seen[g.Name] || !strings.HasPrefix(g.Name, toComplete) {
			continue
		}
		seen[g.Name] = true
		names = append(names, g.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions wires the file and group completions of a command
// that takes a document argument.
func registerCompletions(cmd *cobra.Command) {
	cmd.ValidArgsFunction = completeFileArg(documentExts...)
	_ = cmd.RegisterFlagCompletionFunc("group", completeGroupFlag)
	for flag, exts := range map[string][]string{
		"config":       configExts,
		"output-image": imageExts,
		"output-json":  {"json"},
	} {
		if cmd.Flags().Lookup(flag) != nil {
			_ = cmd.RegisterFlagCompletionFunc(flag, completeFileFlag(exts...))
		}
	}
}
