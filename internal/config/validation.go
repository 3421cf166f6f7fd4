package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// field describes one setting: its key, default and the parser that assigns
// a raw string to the matching Settings field.
type field struct {
	key    string
	def    interface{}
	assign func(s *Settings, raw string) error
}

var fields = []field{
	{KeyProjectID, DefaultProjectID, func(s *Settings, raw string) error {
		s.ProjectID = strings.TrimSpace(raw)
		return nil
	}},
	{KeyCollectionPrefix, DefaultCollectionPrefix, func(s *Settings, raw string) error {
		s.CollectionPrefix = strings.TrimSpace(raw)
		return nil
	}},
	{KeyModelPath, DefaultModelPath, func(s *Settings, raw string) error {
		s.ModelPath = strings.TrimSpace(raw)
		return nil
	}},
	{KeyPredictionConfidenceThreshold, DefaultPredictionConfidenceThreshold, func(s *Settings, raw string) (err error) {
		s.PredictionConfidenceThreshold, err = parseFloat(raw)
		return err
	}},
	{KeyMaxConcurrentIntegrations, DefaultMaxConcurrentIntegrations, func(s *Settings, raw string) (err error) {
		s.MaxConcurrentIntegrations, err = parseInt(raw)
		return err
	}},
	{KeyIntegrationTimeoutSeconds, DefaultIntegrationTimeoutSeconds, func(s *Settings, raw string) (err error) {
		s.IntegrationTimeoutSeconds, err = parseInt(raw)
		return err
	}},
	{KeyExplorationRate, DefaultExplorationRate, func(s *Settings, raw string) (err error) {
		s.ExplorationRate, err = parseFloat(raw)
		return err
	}},
	{KeyKnowledgeBaseRefreshHours, DefaultKnowledgeBaseRefreshHours, func(s *Settings, raw string) (err error) {
		s.KnowledgeBaseRefreshHours, err = parseInt(raw)
		return err
	}},
	{KeyLogLevel, string(DefaultLogLevel), func(s *Settings, raw string) (err error) {
		s.LogLevel, err = ParseLogLevel(raw)
		return err
	}},
	{KeyLogRetentionDays, DefaultLogRetentionDays, func(s *Settings, raw string) (err error) {
		s.LogRetentionDays, err = parseInt(raw)
		return err
	}},
	{KeyMetricsCollectionInterval, DefaultMetricsCollectionInterval, func(s *Settings, raw string) (err error) {
		s.MetricsCollectionInterval, err = parseInt(raw)
		return err
	}},
}

// parseError carries the constraint a raw value failed to parse against.
type parseError struct {
	constraint string
	err        error
}

func (e *parseError) Error() string { return e.constraint }
func (e *parseError) Unwrap() error { return e.err }

func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &parseError{constraint: "must be an integer", err: err}
	}
	return n, nil
}

func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &parseError{constraint: "must be a number", err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &parseError{constraint: "must be a finite number"}
	}
	return f, nil
}

// ParseLogLevel normalizes case and surrounding space before matching one
// of the five accepted level names.
func ParseLogLevel(raw string) (LogLevel, error) {
	level := LogLevel(strings.ToUpper(strings.TrimSpace(raw)))
	for _, l := range LogLevels {
		if level == l {
			return level, nil
		}
	}
	return "", &parseError{constraint: "must be one of " + levelList()}
}

func levelList() string {
	names := make([]string, len(LogLevels))
	for i, l := range LogLevels {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return f.Tag.Get("mapstructure")
		})
	})
	return validate
}

// Check enforces the declared constraint of every field and reports the
// first violation as a *ConfigError.
func (s Settings) Check() error {
	err := settingsValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate settings: %w", err)
	}

	fe := verrs[0]
	return &ConfigError{
		Key:        fe.Field(),
		EnvVar:     EnvVarName(fe.Field()),
		Value:      fmt.Sprint(fe.Value()),
		Constraint: describe(fe),
	}
}

// describe turns a failed validator tag into a readable constraint.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + levelList()
	default:
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
}
