package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `blob:
  backend: s3
  bucket: my-bucket
  prefix: vifei
  region: us-east-1
  endpoint: https://example.com
  s3_path_style: true

output:
  eventlog_dir: ./out/logs
  bundle_dir: ./out/bundles
  incident_dir: ./out/incidents
  tour_dir: ./out/tours

notification:
  webhook_url: https://hooks.example.com/vifei
  webhook_headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "blob.backend", cfg.Blob.Backend, "s3")
	assertEqual(t, "blob.bucket", cfg.Blob.Bucket, "my-bucket")
	assertEqual(t, "blob.region", cfg.Blob.Region, "us-east-1")
	assertEqual(t, "blob.endpoint", cfg.Blob.Endpoint, "https://example.com")
	if !cfg.Blob.S3PathStyle {
		t.Error("expected blob.s3_path_style=true")
	}

	assertEqual(t, "output.eventlog_dir", cfg.Output.EventLogDir, "./out/logs")
	assertEqual(t, "output.bundle_dir", cfg.Output.BundleDir, "./out/bundles")

	assertEqual(t, "notification.webhook_url", cfg.Notification.WebhookURL, "https://hooks.example.com/vifei")
	if cfg.Notification.Timeout.Duration != 10*time.Second {
		t.Errorf("expected notification.timeout=10s, got %v", cfg.Notification.Timeout.Duration)
	}
	if cfg.Notification.Retries == nil || *cfg.Notification.Retries != 3 {
		t.Errorf("expected notification.retries=3")
	}
	if cfg.Notification.WebhookHeaders["Authorization"] != "Bearer token123" {
		t.Errorf("expected Authorization header")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Blob.Backend != "" {
		t.Errorf("expected empty backend, got %q", cfg.Blob.Backend)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/vifei.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "{{invalid yaml")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BUCKET", "expanded-bucket")

	yaml := "blob:\n  bucket: ${TEST_BUCKET}"
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "blob.bucket", cfg.Blob.Bucket, "expanded-bucket")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	yaml := `blob:
  backend: filesystem
bogus_key: should_fail
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "bogus_key") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestLoad_UnknownNestedKeyRejected(t *testing.T) {
	yaml := `blob:
  backend: filesystem
  path: ./data
  unknown_field: bad
`
	path := writeTemp(t, yaml)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown nested key, got nil")
	}
	if !strings.Contains(err.Error(), "unknown_field") {
		t.Errorf("error should mention the unknown key, got: %v", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	path := writeTemp(t, "notification:\n  timeout: 30s")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Notification.Timeout.Duration != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.Notification.Timeout.Duration)
	}
}

// writeTemp writes content to a temp file and returns the path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vifei.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", field, got, want)
	}
}
