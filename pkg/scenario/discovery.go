package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/picogrid/uav-deconfliction/pkg/logger"
)

// Discover finds scenario files (*.yaml, *.yml) under the given directories.
// Missing directories are skipped; files that fail to parse are logged and
// skipped.
func Discover(dirs []string) ([]*Scenario, error) {
	var scenarios []*Scenario

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isScenarioFile(path) {
				return nil
			}

			s, err := Load(path)
			if err != nil {
				logger.Warnf("Skipping %s: %v", path, err)
				return nil
			}
			scenarios = append(scenarios, s)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s for scenarios: %w", dir, err)
		}
	}

	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios, nil
}

// RegisterDiscovered adds discovered scenarios to r. A file whose name is
// already registered is skipped with a warning.
func RegisterDiscovered(r *Registry, dirs []string) (int, error) {
	scenarios, err := Discover(dirs)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, s := range scenarios {
		if err := r.Register(s); err != nil {
			logger.Warnf("Skipping %s: %v", s.Source, err)
			continue
		}
		added++
	}
	return added, nil
}

func isScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
