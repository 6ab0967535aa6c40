package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Inspect available scenarios",
	Long: `Scenarios lists the built-in scenarios together with any scenario files
discovered in the configured directories.`,
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenarios",
	RunE:  listScenarios,
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a scenario as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  showScenario,
}

func init() {
	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosShowCmd)
}

func listScenarios(_ *cobra.Command, _ []string) error {
	registry, err := scenarioRegistry()
	if err != nil {
		return err
	}

	names := registry.List()
	scenarios := make([]*scenario.Scenario, 0, len(names))
	for _, name := range names {
		s, err := registry.Get(name)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, s)
	}

	rw, err := reportWriter()
	if err != nil {
		return err
	}
	return rw.Scenarios(scenarios)
}

func showScenario(_ *cobra.Command, args []string) error {
	registry, err := scenarioRegistry()
	if err != nil {
		return err
	}
	s, err := registry.Get(args[0])
	if err != nil {
		return err
	}

	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
