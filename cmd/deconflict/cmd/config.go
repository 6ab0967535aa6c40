package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/config"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create configuration files",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Print(appConfig.String())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  initConfigFile,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func initConfigFile(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		if !logger.IsTerminal(os.Stdin) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Overwrite %s?", path),
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return err
	}
	logger.Successf("Wrote default configuration to %s", path)
	return nil
}
