package config

import (
	"reflect"
	"strings"
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	fields := strings.Split(fieldPath, ".")
	val := reflect.ValueOf(config)

	for _, field := range fields {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}

		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	// Check if the field is a pointer to a bool and is not nil
	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		return val.Bool()
	}

	return defaultValue
}

// SetThen returns value if it is set, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// UpdateConfigFromEnv sets configuration values from environment variables, if they are set.
func UpdateConfigFromEnv(cfg *Config, lookup LookupFunc) {
	envVars := map[string]*string{
		"SFLREPORT_LOG_LEVEL":        &cfg.Logger.Level,
		"SFLREPORT_VCS":              &cfg.Publisher.VCS,
		"SFLREPORT_VCS_BASE_URL":     &cfg.Publisher.BaseURL,
		"SFLREPORT_ARTIFACTS_BUCKET": &cfg.Artifacts.Bucket,
		"SFLREPORT_ARTIFACTS_PREFIX": &cfg.Artifacts.Prefix,
	}

	for env, val := range envVars {
		if v := lookup(env); v != "" {
			*val = v
		}
	}

	if cfg.Artifacts.Region == "" {
		cfg.Artifacts.Region = firstNonEmpty(lookup("AWS_REGION"), lookup("AWS_DEFAULT_REGION"))
	}
	if token := lookup("SFLREPORT_TOKEN"); token != "" {
		cfg.Publisher.Token = token
	}
}

// ResolveToken returns the configured token or the conventional token
// variable of the given VCS.
func ResolveToken(cfg *Config, vcs string, lookup LookupFunc) string {
	if cfg != nil && cfg.Publisher.Token != "" {
		return cfg.Publisher.Token
	}

	switch strings.ToLower(vcs) {
	case "github":
		return lookup("GITHUB_TOKEN")
	case "gitlab":
		return firstNonEmpty(lookup("GITLAB_TOKEN"), lookup("CI_JOB_TOKEN"))
	case "bitbucket":
		return lookup("BITBUCKET_TOKEN")
	default:
		return ""
	}
}

// ReportDefaults fills unset report settings with defaults.
func ReportDefaults(r Report) Report {
	r.Order = SetThen(r.Order, DefaultOrder)
	r.ToolName = SetThen(r.ToolName, DefaultToolName)
	r.StacktraceMaxLength = SetThen(r.StacktraceMaxLength, DefaultStacktraceMaxLength)
	if len(r.Ranking) == 0 {
		r.Ranking = []string{r.Order}
	}
	if len(r.Thresholds) == 0 {
		r.Thresholds = make([]float64, len(r.Ranking))
		for i := range r.Thresholds {
			r.Thresholds[i] = DefaultThreshold
		}
	}
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
