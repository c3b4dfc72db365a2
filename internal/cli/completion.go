package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/pkg/config"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/layout"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for adforge.

Channel IDs, preset names and styles complete from the active catalog, so
entries added with --catalog show up too.

Bash:
  $ source <(adforge completion bash)

Zsh:
  $ adforge completion zsh > "${fpath[1]}/_adforge"

Fish:
  $ adforge completion fish > ~/.config/fish/completions/adforge.fish

PowerShell:
  PS> adforge completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeChannels completes channel IDs with their display names.
func (c *CLI) completeChannels(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
	reg, _, err := config.Defaults(c.catalog)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, s := range reg.All() {
		if strings.HasPrefix(s.ID, prefix) {
			out = append(out, s.ID+"\t"+s.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePresets completes export preset names with their descriptions.
func (c *CLI) completePresets(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
	_, presets, err := config.Defaults(c.catalog)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, p := range presets.All() {
		if strings.HasPrefix(p.Name, prefix) {
			out = append(out, p.Name+"\t"+p.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeStyles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(layout.DefaultStyles))
	for i, s := range layout.DefaultStyles {
		out[i] = string(s)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeQualities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(export.Qualities))
	for i, q := range export.Qualities {
		out[i] = string(q)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
