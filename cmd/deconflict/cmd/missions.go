package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Manage stored missions",
	Long:  `List, remove and cross-check the missions kept in the SQLite mission store`,
}

var missionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored missions",
	RunE:  listMissions,
}

var missionsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a stored mission",
	Args:  cobra.ExactArgs(1),
	RunE:  removeMission,
}

var missionsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every stored mission against the others",
	RunE:  checkMissions,
}

func init() {
	missionsRemoveCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	missionsCheckCmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")
	missionsCheckCmd.Flags().String("status", "", "only report missions with this status (clear, conflict)")

	missionsCmd.AddCommand(missionsListCmd)
	missionsCmd.AddCommand(missionsRemoveCmd)
	missionsCmd.AddCommand(missionsCheckCmd)
}

func listMissions(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	missions, err := st.LoadMissions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load missions: %w", err)
	}

	rw, err := reportWriter()
	if err != nil {
		return err
	}
	return rw.Missions(missions)
}

func removeMission(cmd *cobra.Command, args []string) error {
	id := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && logger.IsTerminal(os.Stdin) {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Remove mission '%s'?", id),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := st.DeleteMission(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to remove mission %s: %w", id, err)
	}
	logger.Successf("Removed mission %s", id)
	return nil
}

// checkMissions registers every stored mission and validates each one
// against the rest
func checkMissions(cmd *cobra.Command, _ []string) error {
	var only models.ValidationStatus
	if status, _ := cmd.Flags().GetString("status"); status != "" {
		parsed, err := models.ParseValidationStatus(status)
		if err != nil {
			return err
		}
		only = parsed
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	missions, err := st.LoadMissions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load missions: %w", err)
	}
	if len(missions) == 0 {
		fmt.Println("No missions stored.")
		return nil
	}

	e, collector, err := newEngine(-1)
	if err != nil {
		return err
	}
	if _, err := e.RegisterAll(missions); err != nil {
		return fmt.Errorf("failed to register stored missions: %w", err)
	}

	var results []models.ValidationResult
	err = logger.WithSpinner(fmt.Sprintf("Cross-checking %d missions", len(missions)), func() error {
		var batchErr error
		results, batchErr = e.ValidateBatch(cmd.Context(), missions)
		return batchErr
	})
	if err != nil {
		return err
	}

	if only != "" {
		results = withStatus(results, only)
	}

	rw, err := reportWriter()
	if err != nil {
		return err
	}
	if err := rw.Summary(results); err != nil {
		return err
	}

	metricsOut, _ := cmd.Flags().GetString("metrics-out")
	return writeMetrics(collector, metricsOut)
}

func withStatus(results []models.ValidationResult, status models.ValidationStatus) []models.ValidationResult {
	kept := make([]models.ValidationResult, 0, len(results))
	for _, r := range results {
		if r.Status == status {
			kept = append(kept, r)
		}
	}
	return kept
}
