package config

import (
	"fmt"
	"time"
)

// Config represents a vifei.yaml configuration file. All values are
// optional. Only the notification section is read by a command (export
// --config); the blob and output sections are parsed and validated but
// no command uses them as flag defaults.
type Config struct {
	Blob         BlobConfig         `yaml:"blob"`
	Output       OutputConfig       `yaml:"output"`
	Notification NotificationConfig `yaml:"notification"`
}

// BlobConfig selects and configures the blob backend.
type BlobConfig struct {
	Backend  string `yaml:"backend"` // "filesystem" or "s3"
	Path     string `yaml:"path"`    // filesystem backend root
	Bucket   string `yaml:"bucket"`  // s3 backend
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	S3PathStyle bool `yaml:"s3_path_style"`
}

// OutputConfig holds default output directories for each command.
type OutputConfig struct {
	EventLogDir string `yaml:"eventlog_dir"`
	BundleDir   string `yaml:"bundle_dir"`
	IncidentDir string `yaml:"incident_dir"`
	TourDir     string `yaml:"tour_dir"`
}

// NotificationConfig holds optional post-export notification targets.
type NotificationConfig struct {
	WebhookURL     string   `yaml:"webhook_url,omitempty"`
	WebhookHeaders map[string]string `yaml:"webhook_headers,omitempty"`
	RedisAddr      string   `yaml:"redis_addr,omitempty"`
	RedisChannel   string   `yaml:"redis_channel,omitempty"`
	Timeout        Duration `yaml:"timeout,omitempty"`
	Retries        *int     `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
