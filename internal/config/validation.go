package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate runs the struct tag rules and the cross-field checks that tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if strings.TrimSpace(c.Classifier.APIKey) == "" {
		return fmt.Errorf("classifier.api_key is required for provider %q", c.Classifier.Provider)
	}

	if _, err := time.LoadLocation(c.Analysis.Timezone); err != nil {
		return fmt.Errorf("analysis.timezone %q: %w", c.Analysis.Timezone, err)
	}

	if err := uniqueOptions("dialogue.age_ranges", c.Dialogue.AgeRanges); err != nil {
		return err
	}
	if err := uniqueOptions("dialogue.genders", c.Dialogue.Genders); err != nil {
		return err
	}
	return uniqueOptions("dialogue.countries", c.Dialogue.Countries)
}

// uniqueOptions rejects option sets that would be ambiguous under the
// dialogue's case-insensitive matching.
func uniqueOptions(field string, options []string) error {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		key := strings.ToLower(strings.TrimSpace(o))
		if key == "" {
			return errors.New(field + " contains an empty option")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s contains duplicate option %q", field, o)
		}
		seen[key] = struct{}{}
	}
	return nil
}
