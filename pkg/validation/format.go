// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/i18n"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateLocale checks that output can be rendered in the given locale.
func ValidateLocale(locale string) error {
	if _, err := i18n.ParseLocale(locale); err != nil {
		return fmt.Errorf("expected locale %s or %s: %w", constants.LocaleEnglish, constants.LocaleSpanish, err)
	}
	return nil
}
