// Package report renders validation results, stored missions and benchmark
// runs for the terminal or as machine-readable JSON and YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

// Format selects the output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json, yaml)", s)
	}
}

// Writer renders reports to an io.Writer
type Writer struct {
	w       io.Writer
	format  Format
	noColor bool
}

// NewWriter creates a report writer. Color is only used for text output.
func NewWriter(w io.Writer, format Format, noColor bool) *Writer {
	return &Writer{w: w, format: format, noColor: noColor}
}

func (rw *Writer) paint(attr color.Attribute, text string) string {
	if rw.noColor {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

// Result writes one validation result
func (rw *Writer) Result(result models.ValidationResult) error {
	switch rw.format {
	case FormatJSON:
		return rw.json(result)
	case FormatYAML:
		return rw.yaml(result)
	}

	status := strings.ToUpper(string(result.Status))
	if result.Status == models.StatusConflict {
		status = rw.paint(color.FgRed, status)
	} else {
		status = rw.paint(color.FgGreen, status)
	}
	fmt.Fprintf(rw.w, "Mission %s: %s\n", result.PrimaryID, status)
	fmt.Fprintln(rw.w, deconfliction.Explain(result))
	fmt.Fprintln(rw.w)

	m := result.Metrics
	table := logger.NewTable("METRIC", "VALUE")
	table.AddRow("Registered missions", strconv.Itoa(m.TotalRegistered))
	table.AddRow("Candidates", strconv.Itoa(m.Candidates))
	table.AddRow("Temporal checks", strconv.Itoa(m.TemporalChecks))
	table.AddRow("Spatial checks", strconv.Itoa(m.SpatialChecks))
	table.AddRow("Cache hits", strconv.Itoa(m.CacheHits))
	table.AddRow("Validation time", m.Elapsed.String())
	return table.Render(rw.w)
}

// Summary writes one line per validation result. Structured formats encode
// the full results.
func (rw *Writer) Summary(results []models.ValidationResult) error {
	switch rw.format {
	case FormatJSON:
		return rw.json(results)
	case FormatYAML:
		return rw.yaml(results)
	}

	table := logger.NewTable("MISSION", "STATUS", "LOCATIONS", "PEERS")
	conflicting := 0
	for _, r := range results {
		status := string(r.Status)
		if r.Status == models.StatusConflict {
			conflicting++
		}
		table.AddRow(r.PrimaryID, status, strconv.Itoa(len(r.ConflictLocations())), strings.Join(r.PeerIDs(), ","))
	}
	if err := table.Render(rw.w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(rw.w, "\n%d of %d missions in conflict\n", conflicting, len(results))
	return err
}

// Missions writes a table of missions
func (rw *Writer) Missions(missions []*models.Mission) error {
	switch rw.format {
	case FormatJSON, FormatYAML:
		rows := make([]missionRow, len(missions))
		for i, m := range missions {
			rows[i] = newMissionRow(m)
		}
		if rw.format == FormatJSON {
			return rw.json(rows)
		}
		return rw.yaml(rows)
	}

	if len(missions) == 0 {
		_, err := fmt.Fprintln(rw.w, "No missions stored.")
		return err
	}

	table := logger.NewTable("ID", "START", "END", "WAYPOINTS", "PATH (m)", "AVG SPEED (m/s)")
	for _, m := range missions {
		start, end := m.TimeRange()
		table.AddRow(
			m.ID(),
			start.Format(time.RFC3339),
			end.Format(time.RFC3339),
			strconv.Itoa(m.WaypointCount()),
			fmt.Sprintf("%.1f", m.PathLength()),
			fmt.Sprintf("%.2f", m.AverageSpeed()),
		)
	}
	return table.Render(rw.w)
}

// Bench writes benchmark results
func (rw *Writer) Bench(results []scenario.BenchResult) error {
	switch rw.format {
	case FormatJSON, FormatYAML:
		rows := make([]benchRow, len(results))
		for i, r := range results {
			rows[i] = benchRow{
				Drones:         r.Size,
				Seconds:        r.Metrics.Elapsed.Seconds(),
				Status:         r.Status,
				Conflicts:      r.Conflicts,
				CacheSize:      r.CacheEntries,
				TemporalChecks: r.Metrics.TemporalChecks,
				SpatialChecks:  r.Metrics.SpatialChecks,
			}
		}
		if rw.format == FormatJSON {
			return rw.json(rows)
		}
		return rw.yaml(rows)
	}

	table := logger.NewTable("DRONES", "TIME (s)", "STATUS", "CONFLICTS", "CACHE SIZE", "TEMPORAL", "SPATIAL")
	for _, r := range results {
		table.AddRow(
			strconv.Itoa(r.Size),
			fmt.Sprintf("%.4f", r.Metrics.Elapsed.Seconds()),
			string(r.Status),
			strconv.Itoa(r.Conflicts),
			strconv.Itoa(r.CacheEntries),
			strconv.Itoa(r.Metrics.TemporalChecks),
			strconv.Itoa(r.Metrics.SpatialChecks),
		)
	}
	return table.Render(rw.w)
}

// Scenarios writes a table of scenario names, descriptions and sources
func (rw *Writer) Scenarios(scenarios []*scenario.Scenario) error {
	switch rw.format {
	case FormatJSON, FormatYAML:
		rows := make([]scenarioRow, len(scenarios))
		for i, s := range scenarios {
			rows[i] = scenarioRow{Name: s.Name, Description: s.Description, Source: sourceOf(s), Simulated: len(s.Simulated)}
		}
		if rw.format == FormatJSON {
			return rw.json(rows)
		}
		return rw.yaml(rows)
	}

	table := logger.NewTable("NAME", "TRAFFIC", "SOURCE", "DESCRIPTION")
	for _, s := range scenarios {
		table.AddRow(s.Name, strconv.Itoa(len(s.Simulated)), sourceOf(s), s.Description)
	}
	return table.Render(rw.w)
}

func sourceOf(s *scenario.Scenario) string {
	if s.Source == "" {
		return "built-in"
	}
	return s.Source
}

func (rw *Writer) json(v interface{}) error {
	enc := json.NewEncoder(rw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (rw *Writer) yaml(v interface{}) error {
	enc := yaml.NewEncoder(rw.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type missionRow struct {
	ID           string  `json:"id" yaml:"id"`
	Start        string  `json:"start" yaml:"start"`
	End          string  `json:"end" yaml:"end"`
	Waypoints    int     `json:"waypoints" yaml:"waypoints"`
	PathLength   float64 `json:"path_length" yaml:"path_length"`
	AverageSpeed float64 `json:"average_speed" yaml:"average_speed"`
}

func newMissionRow(m *models.Mission) missionRow {
	start, end := m.TimeRange()
	return missionRow{
		ID:           m.ID(),
		Start:        start.Format(time.RFC3339),
		End:          end.Format(time.RFC3339),
		Waypoints:    m.WaypointCount(),
		PathLength:   m.PathLength(),
		AverageSpeed: m.AverageSpeed(),
	}
}

type benchRow struct {
	Drones         int                     `json:"num_drones" yaml:"num_drones"`
	Seconds        float64                 `json:"execution_time" yaml:"execution_time"`
	Status         models.ValidationStatus `json:"status" yaml:"status"`
	Conflicts      int                     `json:"conflicts" yaml:"conflicts"`
	CacheSize      int                     `json:"cache_size" yaml:"cache_size"`
	TemporalChecks int                     `json:"temporal_checks" yaml:"temporal_checks"`
	SpatialChecks  int                     `json:"spatial_checks" yaml:"spatial_checks"`
}

type scenarioRow struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Source      string `json:"source" yaml:"source"`
	Simulated   int    `json:"simulated" yaml:"simulated"`
}
