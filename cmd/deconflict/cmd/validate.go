package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

// errConflict is returned by validate --fail-on-conflict
var errConflict = errors.New("mission has conflicts")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a primary mission against simulated traffic",
	Long: `Validate registers a scenario's simulated missions (plus stored missions
overlapping the primary's window when --db is given), then checks the
primary mission against them and prints an explanation of any conflicts.

Without --scenario or --file the scenario is chosen interactively.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringP("scenario", "s", "", "built-in or discovered scenario name")
	validateCmd.Flags().StringP("file", "f", "", "scenario file (YAML)")
	validateCmd.Flags().Float64("buffer", -1, "safety buffer in meters (overrides scenario and config)")
	validateCmd.Flags().Bool("fail-on-conflict", false, "exit non-zero when conflicts are found")
	validateCmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	s, interactive, err := resolveScenario(cmd)
	if err != nil {
		return err
	}

	buffer, _ := cmd.Flags().GetFloat64("buffer")
	if buffer < 0 {
		buffer = s.Buffer(appConfig.Engine.SafetyBuffer)
		if interactive {
			if buffer, err = promptBuffer(buffer); err != nil {
				return err
			}
		}
	}

	e, collector, err := newEngine(buffer)
	if err != nil {
		return err
	}

	missions, err := s.Build(now())
	if err != nil {
		return err
	}
	if _, err := e.RegisterAll(missions.Simulated); err != nil {
		return fmt.Errorf("failed to register scenario traffic: %w", err)
	}

	if appConfig.Store.Path != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		start, end := missions.Primary.TimeRange()
		stored, err := st.LoadOverlapping(cmd.Context(), start, end)
		if err != nil {
			return fmt.Errorf("failed to load stored missions: %w", err)
		}
		n, err := e.RegisterAll(unregistered(e, stored))
		if err != nil {
			return fmt.Errorf("failed to register stored missions: %w", err)
		}
		logger.Debugf("Registered %d stored missions from %s", n, appConfig.Store.Path)
	}

	logger.Infof("Validating %s against %d missions (safety buffer %.1fm)", s.Name, e.Count(), e.SafetyBuffer())
	result := e.Validate(missions.Primary)

	rw, err := reportWriter()
	if err != nil {
		return err
	}
	if err := rw.Result(result); err != nil {
		return err
	}

	metricsOut, _ := cmd.Flags().GetString("metrics-out")
	if err := writeMetrics(collector, metricsOut); err != nil {
		return err
	}

	failOnConflict, _ := cmd.Flags().GetBool("fail-on-conflict")
	if failOnConflict && result.Status == models.StatusConflict {
		return fmt.Errorf("%w: %d conflicting missions", errConflict, len(result.Conflicts))
	}
	return nil
}

// unregistered drops missions whose id the engine already holds, such as
// scenario traffic that was stored by an earlier register
func unregistered(e *deconfliction.Engine, missions []*models.Mission) []*models.Mission {
	fresh := make([]*models.Mission, 0, len(missions))
	for _, m := range missions {
		if _, ok := e.MissionByID(m.ID()); ok {
			logger.Debugf("Skipping stored mission %s: already registered from the scenario", m.ID())
			continue
		}
		fresh = append(fresh, m)
	}
	return fresh
}

// resolveScenario picks the scenario from --file, --scenario or an
// interactive prompt, reporting whether the prompt was used
func resolveScenario(cmd *cobra.Command) (*scenario.Scenario, bool, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		s, err := scenario.Load(file)
		return s, false, err
	}

	registry, err := scenarioRegistry()
	if err != nil {
		return nil, false, err
	}

	name, _ := cmd.Flags().GetString("scenario")
	if name != "" {
		s, err := registry.Get(name)
		return s, false, err
	}

	if !logger.IsTerminal(os.Stdin) {
		return nil, false, fmt.Errorf("no scenario selected (use --scenario or --file)")
	}
	prompt := &survey.Select{
		Message: "Select scenario:",
		Options: registry.List(),
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		return nil, false, err
	}
	s, err := registry.Get(name)
	return s, true, err
}

// scenarioRegistry returns the built-in scenarios plus any discovered in the
// configured directories
func scenarioRegistry() (*scenario.Registry, error) {
	registry := scenario.NewDefaultRegistry()
	n, err := scenario.RegisterDiscovered(registry, appConfig.Scenarios.Dirs)
	if err != nil {
		return nil, fmt.Errorf("failed to discover scenarios: %w", err)
	}
	if n > 0 {
		logger.Debugf("Discovered %d scenario files", n)
	}
	return registry, nil
}
