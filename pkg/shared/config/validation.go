package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var supportedVCS = []string{"github", "gitlab", "bitbucket"}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateReportConfig(&cfg.Report); err != nil {
		return fmt.Errorf("YAML global config: report directive is invalid: %w", err)
	}
	if err := ValidatePublisherConfig(&cfg.Publisher); err != nil {
		return fmt.Errorf("YAML global config: publisher directive is invalid: %w", err)
	}
	return nil
}

// ValidateReportConfig checks the report settings that are set.
func ValidateReportConfig(report *Report) error {
	if report == nil {
		return fmt.Errorf("report configuration is nil")
	}
	if len(report.Ranking) > 0 && len(report.Thresholds) > 0 {
		if err := ValidateRanking(report.Ranking, report.Thresholds, report.Order); err != nil {
			return err
		}
	}
	if report.StacktraceMaxLength < 0 {
		return fmt.Errorf("stacktrace_max_length cannot be negative: %d", report.StacktraceMaxLength)
	}
	return nil
}

// ValidateRanking checks that every algorithm has exactly one threshold.
func ValidateRanking(ranking []string, thresholds []float64, order string) error {
	if len(ranking) == 0 {
		return fmt.Errorf("ranking must name at least one algorithm")
	}
	if len(ranking) != len(thresholds) {
		return fmt.Errorf("ranking has %d algorithms but %d thresholds were given", len(ranking), len(thresholds))
	}

	seen := make(map[string]struct{}, len(ranking))
	for _, algorithm := range ranking {
		if strings.TrimSpace(algorithm) == "" {
			return fmt.Errorf("ranking contains an empty algorithm name")
		}
		if _, dup := seen[algorithm]; dup {
			return fmt.Errorf("algorithm %q is listed more than once", algorithm)
		}
		seen[algorithm] = struct{}{}
	}

	if order != "" {
		if _, ok := seen[order]; !ok {
			return fmt.Errorf("order algorithm %q is not part of the ranking %v", order, ranking)
		}
	}
	return nil
}

// ValidatePublisherConfig checks the VCS name and base URL if they are set.
func ValidatePublisherConfig(publisher *Publisher) error {
	if publisher == nil {
		return fmt.Errorf("publisher configuration is nil")
	}
	if publisher.VCS != "" && !IsSupportedVCS(publisher.VCS) {
		return fmt.Errorf("unsupported vcs %q, expected one of %s", publisher.VCS, strings.Join(supportedVCS, ", "))
	}
	if publisher.BaseURL != "" {
		u, err := url.Parse(publisher.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url %q", publisher.BaseURL)
		}
	}
	return nil
}

// IsSupportedVCS reports whether a publisher exists for the VCS name.
func IsSupportedVCS(vcs string) bool {
	for _, s := range supportedVCS {
		if strings.EqualFold(s, vcs) {
			return true
		}
	}
	return false
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, limit time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %s: %v cannot be negative", name, d)
	}
	if d > limit {
		return fmt.Errorf("%s duration is too long: %v exceeds maximum of %v", name, d, limit)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	return validatePort(proxy.Port)
}

// validateHost ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
