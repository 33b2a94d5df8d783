package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/job"
)

var validShells = []string{"bash", "zsh", "fish", "powershell"}

const completionMarker = "shopweek completion"

// shellRCFiles maps shells to their config file relative to the home directory.
var shellRCFiles = map[string]string{
	"bash":       ".bashrc",
	"zsh":        ".zshrc",
	"fish":       ".config/fish/config.fish",
	"powershell": ".config/powershell/Microsoft.PowerShell_profile.ps1",
}

var shellLoadLines = map[string]string{
	"bash":       `eval "$(shopweek completion bash)"`,
	"zsh":        `eval "$(shopweek completion zsh)"`,
	"fish":       `shopweek completion fish | source`,
	"powershell": `shopweek completion powershell | Out-String | Invoke-Expression`,
}

var completionCmd = newCompletionCmd()

func newCompletionCmd() *cobra.Command {
	cmd := LeafCommand{
		Use:   "completion [shell]",
		Short: "Print or install the shell completion script",
		Example: `  shopweek completion zsh > "${fpath[1]}/_shopweek"
  shopweek completion --install`,
		Args: cobra.RangeArgs(0, 1),
		BoolFlags: []BoolFlag{
			{Name: "install", Usage: "add the completion to your shell config instead of printing it"},
			{Name: "yes", Short: "y", Usage: "skip confirmation prompt"},
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := detectShell()
			if len(args) > 0 {
				shell = args[0]
			}
			if shell == "" {
				return fmt.Errorf("could not detect shell from $SHELL, pass one of: %s", strings.Join(validShells, ", "))
			}
			install, _ := cmd.Flags().GetBool("install")
			if !install {
				return runCompletion(cmd, shell)
			}
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			return runCompletionInstall(cmd, shell, homeDir, confirmFor(yes))
		},
	}.Build()
	cmd.ValidArgs = validShells
	return cmd
}

func runCompletion(cmd *cobra.Command, shell string) error {
	root := cmd.Root()
	out := cmd.OutOrStdout()

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (valid: %s)", shell, strings.Join(validShells, ", "))
	}
}

func runCompletionInstall(cmd *cobra.Command, shell, homeDir string, confirm ConfirmFunc) error {
	rel, ok := shellRCFiles[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (valid: %s)", shell, strings.Join(validShells, ", "))
	}
	path := filepath.Join(homeDir, rel)
	display := filepath.Join("~", rel)
	w := cmd.OutOrStdout()

	if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), completionMarker) {
		_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("completion already set up in %s", Primary(display))))
		return nil
	}

	ok, err := confirm(fmt.Sprintf("Add shopweek completion for %s to %s?", shell, display))
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(w, Silent("cancelled"))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "\n# %s\n%s\n", completionMarker, shellLoadLines[shell])
	if closeErr := f.Close(); closeErr != nil {
		return closeErr
	}
	if writeErr != nil {
		return writeErr
	}
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("completion for %s added to %s", Primary(shell), Primary(display))))
	return nil
}

// detectShell returns the shell named by $SHELL, or "" when unknown.
func detectShell() string {
	switch base := filepath.Base(os.Getenv("SHELL")); base {
	case "bash", "zsh", "fish":
		return base
	}
	return ""
}

var dayWords = []string{
	"today", "tomorrow", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
	"next monday", "next friday",
}

// completeJobs suggests job titles from the board for the first argument.
func completeJobs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var titles []string
	_ = withApp(cmd, func(a *app) error {
		jobs, err := a.svc.ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		titles = jobCompletions(jobs, toComplete)
		return nil
	})
	return titles, cobra.ShellCompDirectiveNoFileComp
}

func jobCompletions(jobs []job.Job, prefix string) []string {
	var out []string
	for _, j := range jobs {
		if strings.HasPrefix(strings.ToLower(j.Title), strings.ToLower(prefix)) {
			out = append(out, j.Title+"\t"+j.Ref)
		}
	}
	return out
}

// completeMoveArgs suggests a job, then a day or "backlog".
func completeMoveArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeJobs(cmd, args, toComplete)
	}
	if len(args) == 1 {
		return append([]string{"backlog"}, dayWords...), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func completeViews(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	views := make([]string, 0, 2)
	for _, d := range job.Dimensions() {
		views = append(views, d.String())
	}
	return views, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions wires dynamic completion onto the board commands.
func registerCompletions() {
	moveCmd.ValidArgsFunction = completeMoveArgs
	jobEditCmd.ValidArgsFunction = completeJobs
	jobRemoveCmd.ValidArgsFunction = completeJobs
	for _, c := range []*cobra.Command{moveCmd, backlogCmd, scheduleCmd} {
		_ = c.RegisterFlagCompletionFunc("view", completeViews)
	}
	settingsSetCmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return settingKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	settingsGetCmd.ValidArgsFunction = settingsSetCmd.ValidArgsFunction
}
