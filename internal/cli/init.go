package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/config"
)

var initCmd = LeafCommand{
	Use:   "init",
	Short: "Write the default configuration and create the board database",
	StrFlags: []StringFlag{
		{Name: "name", Usage: "board name shown on the schedule and in exports"},
	},
	BoolFlags: []BoolFlag{
		{Name: "force", Usage: "overwrite an existing configuration file"},
		{Name: "yes", Short: "y", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, configPath, err := getContextPaths(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		force, _ := cmd.Flags().GetBool("force")
		yes, _ := cmd.Flags().GetBool("yes")
		return runInit(cmd, homeDir, configPath, name, force, confirmFor(yes))
	},
}.Build()

func runInit(cmd *cobra.Command, homeDir, configPath, name string, force bool, confirm ConfirmFunc) error {
	if configPath == "" {
		configPath = config.Path(homeDir)
	}
	w := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		ok, err := confirm(fmt.Sprintf("Overwrite %s with the defaults?", configPath))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(w, Silent("cancelled"))
			return nil
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	cfg := config.Default(homeDir)
	if name != "" {
		cfg.Board.Name = name
	}
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	a, err := openApp(homeDir, configPath, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("wrote %s", Primary(configPath))))
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("board %q stored in %s", cfg.Board.Name, Primary(cfg.Store.Path))))
	return nil
}
