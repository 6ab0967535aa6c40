package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// promptBuffer asks for a safety buffer in meters, offering def
func promptBuffer(def float64) (float64, error) {
	prompt := &survey.Input{
		Message: "Safety buffer (meters):",
		Default: strconv.FormatFloat(def, 'f', -1, 64),
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required), survey.WithValidator(nonNegativeFloat)); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result, 64)
}

func nonNegativeFloat(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected text input")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	if v < 0 {
		return fmt.Errorf("value must be at least 0")
	}
	return nil
}
