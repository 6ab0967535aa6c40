package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/logger"
	"github.com/picogrid/uav-deconfliction/pkg/models"
	"github.com/picogrid/uav-deconfliction/pkg/scenario"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func runScenario(t *testing.T, name string) models.ValidationResult {
	t.Helper()
	s, err := scenario.NewDefaultRegistry().Get(name)
	if err != nil {
		t.Fatal(err)
	}
	cfg := deconfliction.DefaultConfig()
	cfg.Logger = logger.Discard()
	e, err := deconfliction.NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, result, err := scenario.Run(s, e, now)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestResultText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatText, true).Result(runScenario(t, "temporal-conflict")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Mission primary: CONFLICT",
		"Conflict with drone sim1:",
		"Number of conflict locations: 2",
		"  - X: 100.00, Y: 100.00, Z: 50.00",
		"Temporal checks",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestResultTextClear(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatText, true).Result(runScenario(t, "conflict-free")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Mission primary: CLEAR\n"+deconfliction.NoConflictsMessage) {
		t.Errorf("Unexpected clear output:\n%s", buf.String())
	}
}

func TestResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatJSON, false).Result(runScenario(t, "full-conflict")); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Status    string `json:"status"`
		Conflicts []struct {
			Drone     string `json:"conflicting_drone"`
			Locations []struct {
				X float64 `json:"x"`
			} `json:"conflict_locations"`
			Records []struct {
				Severity string `json:"severity"`
			} `json:"records"`
		} `json:"conflicts"`
		Performance struct {
			TotalDrones int `json:"total_drones"`
		} `json:"performance"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Status != "conflict" || len(decoded.Conflicts) != 1 || decoded.Conflicts[0].Drone != "sim2" {
		t.Errorf("Unexpected decoded result %+v", decoded)
	}
	if decoded.Performance.TotalDrones != 2 || len(decoded.Conflicts[0].Locations) != 2 {
		t.Errorf("Unexpected decoded result %+v", decoded)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("JSON output must not contain color codes")
	}
}

func TestResultYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatYAML, false).Result(runScenario(t, "temporal-conflict")); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid YAML: %v\n%s", err, buf.String())
	}
	if decoded["status"] != "conflict" || decoded["primary_id"] != "primary" {
		t.Errorf("Unexpected decoded result %v", decoded)
	}
}

func TestBenchTable(t *testing.T) {
	var buf bytes.Buffer
	results := []scenario.BenchResult{
		{Size: 10, Status: models.StatusClear, CacheEntries: 4, Metrics: models.ValidationMetrics{Elapsed: 1500 * time.Microsecond}},
		{Size: 1000, Status: models.StatusConflict, Conflicts: 3, CacheEntries: 120},
	}
	if err := NewWriter(&buf, FormatText, true).Bench(results); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, rule and 2 rows, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[2], "10      0.0015    clear") {
		t.Errorf("Unexpected first row %q", lines[2])
	}
}

func TestMissionsAndScenarios(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatText, true)
	if err := w.Missions(nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No missions stored.\n" {
		t.Errorf("Unexpected empty listing %q", buf.String())
	}

	s, _ := scenario.NewDefaultRegistry().Get("vertical-stacking")
	missions, err := s.Build(now)
	if err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	if err := NewWriter(&buf, FormatJSON, true).Missions(missions.Simulated); err != nil {
		t.Fatal(err)
	}
	var rows []missionRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ID != "sim1" || rows[0].PathLength != 100 {
		t.Errorf("Unexpected mission rows %+v", rows)
	}

	buf.Reset()
	if err := w.Scenarios(scenario.Builtin()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "built-in") || !strings.Contains(buf.String(), "complex-3d-maneuvers") {
		t.Errorf("Unexpected scenario listing:\n%s", buf.String())
	}
}

func TestSummary(t *testing.T) {
	results := []models.ValidationResult{
		runScenario(t, "conflict-free"),
		runScenario(t, "temporal-conflict"),
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatText, true).Summary(results); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "MISSION") {
		t.Errorf("Expected table header, got:\n%s", out)
	}
	if !strings.Contains(out, "sim1") {
		t.Errorf("Expected conflicting peer sim1 in summary:\n%s", out)
	}
	if !strings.HasSuffix(out, "1 of 2 missions in conflict\n") {
		t.Errorf("Unexpected summary footer:\n%s", out)
	}

	buf.Reset()
	if err := NewWriter(&buf, FormatJSON, true).Summary(results); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Summary JSON did not decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 results, got %d", len(decoded))
	}
}

func TestResultJSONDecodesIntoModels(t *testing.T) {
	want := runScenario(t, "temporal-conflict")

	var buf bytes.Buffer
	if err := NewWriter(&buf, FormatJSON, true).Result(want); err != nil {
		t.Fatal(err)
	}

	var got models.ValidationResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Result JSON does not decode into ValidationResult: %v\n%s", err, buf.String())
	}
	if got.Status != models.StatusConflict || got.PrimaryID != want.PrimaryID {
		t.Errorf("Decoded %s/%s, want %s/%s", got.PrimaryID, got.Status, want.PrimaryID, want.Status)
	}
	if len(got.Conflicts) != 1 || len(got.Conflicts[0].Records) != len(want.Conflicts[0].Records) {
		t.Fatalf("Unexpected decoded conflicts %+v", got.Conflicts)
	}
	for i, rec := range got.Conflicts[0].Records {
		orig := want.Conflicts[0].Records[i]
		if rec.Kind != orig.Kind || rec.Severity != orig.Severity {
			t.Errorf("Record %d decoded as %s/%s, want %s/%s", i, rec.Kind, rec.Severity, orig.Kind, orig.Severity)
		}
	}

	if err := json.Unmarshal([]byte(`{"status":"unknown"}`), &got); err == nil {
		t.Errorf("Expected an error for an unknown status")
	}
}
