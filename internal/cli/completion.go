package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/source/gitrepo"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for commitgraph.

Bash:
  $ source <(commitgraph completion bash)

Zsh:
  $ commitgraph completion zsh > "${fpath[1]}/_commitgraph"

Fish:
  $ commitgraph completion fish | source

PowerShell:
  PS> commitgraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
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

	return cmd
}

// completeSort completes the --sort flag.
func completeSort(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{visible.SortLinearBek, visible.SortBek, visible.SortDefault}, cobra.ShellCompDirectiveNoFileComp
}

// completeFormat completes the --format flag.
func completeFormat(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{formatJSON, formatDOT, formatSVG}, cobra.ShellCompDirectiveNoFileComp
}

// completeRefs completes --refs with the branches of the repository named
// by the first argument, or the current directory.
func completeRefs(_ *cobra.Command, args []string, prefix string) ([]string, cobra.ShellCompDirective) {
	repo, err := gitrepo.Open(inputArg(args))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	heads, err := repo.Heads()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, h := range heads {
		if strings.HasPrefix(h.Name, prefix) {
			names = append(names, h.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
