package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Icons and symbols for different log types
const (
	IconSuccess  = "✅"
	IconError    = "❌"
	IconWarning  = "⚠️"
	IconRocket   = "🚀"
	IconConfig   = "⚙️"
	IconTime     = "⏱️"
	IconDrone    = "🛩️"
	IconDatabase = "🗄️"
	IconRefresh  = "🔄"
	IconDot      = "•"
	IconArrow    = "→"
)

var (
	colorSection = color.New(color.FgCyan, color.Bold)
	colorKey     = color.New(color.FgCyan)
	colorHeader  = color.New(color.Bold)
)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

func colorEnabled() bool {
	if s := defaultSink(); s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.noColor
	}
	return false
}

func paint(c *color.Color, text string) string {
	if !colorEnabled() {
		return text
	}
	return c.Sprint(text)
}

// LogSection creates a visual section separator
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	fmt.Println(paint(colorSection, line))
	fmt.Println(paint(colorSection, title))
	fmt.Println(paint(colorSection, line))
}

// LogKeyValue prints a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	fmt.Printf("%s %v\n", paint(colorKey, key+":"), value)
}

// Table represents a simple table for console output
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.rows) }

// Print prints the table to stdout
func (t *Table) Print() {
	_ = t.Render(os.Stdout)
}

// Render writes the table to w. Header cells are bold when color is enabled.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range t.headers {
		b.WriteString(paint(colorHeader, fmt.Sprintf("%-*s", widths[i], h)))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for i := range t.headers {
		b.WriteString(strings.Repeat("-", widths[i]))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
