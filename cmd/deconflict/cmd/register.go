package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Store simulated missions for later validations",
	Long: `Register saves the simulated missions of a scenario (and optionally its
primary) into the SQLite mission store. Either every mission is stored or
none is.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringP("file", "f", "", "scenario file (YAML)")
	registerCmd.Flags().StringP("scenario", "s", "", "built-in or discovered scenario name")
	registerCmd.Flags().Bool("include-primary", false, "also store the primary mission")
}

func runRegister(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	name, _ := cmd.Flags().GetString("scenario")
	if file == "" && name == "" {
		return fmt.Errorf("nothing to register (use --file or --scenario)")
	}

	var (
		s   *scenario.Scenario
		err error
	)
	if file != "" {
		s, err = scenario.Load(file)
	} else {
		var registry *scenario.Registry
		if registry, err = scenarioRegistry(); err == nil {
			s, err = registry.Get(name)
		}
	}
	if err != nil {
		return err
	}

	missions, err := s.Build(now())
	if err != nil {
		return err
	}
	toStore := missions.Simulated
	if include, _ := cmd.Flags().GetBool("include-primary"); include {
		toStore = append([]*models.Mission{missions.Primary}, toStore...)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveMissions(cmd.Context(), toStore); err != nil {
		return fmt.Errorf("failed to store missions: %w", err)
	}

	total, err := st.Count(cmd.Context())
	if err != nil {
		return err
	}
	logger.Successf("Stored %d missions from %s (%d total)", len(toStore), s.Name, total)
	return nil
}
