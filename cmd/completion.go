package cmd

import (
	"io"

	"github.com/spf13/cobra"
)

var completionGenerators = map[string]func(root *cobra.Command, out io.Writer) error{
	"bash": func(root *cobra.Command, out io.Writer) error {
		return root.GenBashCompletionV2(out, true)
	},
	"zsh": func(root *cobra.Command, out io.Writer) error {
		return root.GenZshCompletion(out)
	},
	"fish": func(root *cobra.Command, out io.Writer) error {
		return root.GenFishCompletion(out, true)
	},
	"powershell": func(root *cobra.Command, out io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(out)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate a shell completion script for qa-app",
	Long: `Generate a shell completion script for qa-app.

Bash:
  $ source <(qa-app completion bash)

Zsh:
  $ qa-app completion zsh > "${fpath[1]}/_qa-app"

Fish:
  $ qa-app completion fish > ~/.config/fish/completions/qa-app.fish

PowerShell:
  PS> qa-app completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script for it to take effect.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
