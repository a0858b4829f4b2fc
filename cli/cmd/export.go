package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/bundle"
	vifeiconfig "github.com/justapithecus/vifei/cli/config"
	vifeilog "github.com/justapithecus/vifei/log"
	"github.com/justapithecus/vifei/notify"
	"github.com/justapithecus/vifei/notify/redis"
	"github.com/justapithecus/vifei/notify/webhook"
	"github.com/justapithecus/vifei/types"
)

var (
	shareSafeFlag = &cli.BoolFlag{
		Name:     "share-safe",
		Usage:    "Gate the export on a clean secret scan (required)",
		Required: true,
	}
	outputFlag = &cli.StringFlag{
		Name:     "output",
		Aliases:  []string{"o"},
		Usage:    "Output bundle path",
		Required: true,
	}
	refusalReportFlag = &cli.StringFlag{
		Name:  "refusal-report",
		Usage: "Path to write the refusal report if secrets are detected",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a vifei.yaml config (notification targets)",
	}
)

// ExportCommand returns the export command: build a share-safe bundle,
// gated by the secret scanner, with an optional best-effort notification
// fired after a successful write.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Aliases:   []string{"exports"},
		Usage:     "Export an EventLog as a share-safe bundle",
		ArgsUsage: "<eventlog.jsonl>",
		Flags:     append(GlobalFlags(), shareSafeFlag, outputFlag, refusalReportFlag, blobDirFlag, configFlag),
		Action:    exportAction,
	}
}

func exportAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("export: missing <eventlog.jsonl> argument", ExitInvalidArgs)
	}
	if !c.Bool("share-safe") {
		return cli.Exit("export: --share-safe is required in v0.1", ExitInvalidArgs)
	}

	raw, events, err := loadCommittedLog(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.Exit(fmt.Sprintf("export: %v", err), ExitNotFound)
		}
		return cli.Exit(fmt.Sprintf("export: %v", err), ExitRuntime)
	}

	blobs, err := openBlobStore(c, path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("export: %v", err), ExitRuntime)
	}

	result, err := bundle.Build(raw, events, blobs, c.String("output"))
	if err != nil {
		var refused *bundle.RefusedError
		if errors.As(err, &refused) {
			if err := writeRefusalReport(c.String("refusal-report"), refused); err != nil {
				return cli.Exit(fmt.Sprintf("export: write refusal report: %v", err), ExitRuntime)
			}
			return cli.Exit(refused.Error(), ExitRefused)
		}
		return cli.Exit(fmt.Sprintf("export: %v", err), ExitRuntime)
	}

	digest, err := viewModelDigestFor(events)
	if err != nil {
		return cli.Exit(fmt.Sprintf("export: %v", err), ExitRuntime)
	}

	notifyBundleExported(c, result, digest)

	if !wantsJSON(c) {
		fmt.Printf("export: wrote %s (hash %s, %d events, %d blobs)\n",
			result.BundlePath, result.BundleHash, result.EventCount, result.BlobCount)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeRefusalReport(path string, refused *bundle.RefusedError) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(struct {
		Blocked []types.BlockedItem `json:"blocked"`
	}{Blocked: refused.Blocked}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// notifyBundleExported fires a best-effort notification if --config names
// a webhook or Redis target. Failures are logged, never fatal: per
// SPEC_FULL.md §3, notification never affects bundle bytes, the digest,
// or the export's exit code.
func notifyBundleExported(c *cli.Context, result *bundle.Result, digest string) {
	cfgPath := c.String("config")
	if cfgPath == "" {
		return
	}
	logger := vifeilog.NewLogger(&types.RunMeta{RunID: "export"}).Sugar()

	cfg, err := vifeiconfig.Load(cfgPath)
	if err != nil {
		logger.Warnf("export: notification config: %v", err)
		return
	}

	event := &notify.BundleExported{
		ContractVersion: ROBOTSchemaVersion,
		EventType:       "bundle_exported",
		BundlePath:      result.BundlePath,
		BundleHash:      result.BundleHash,
		ViewModelHash:   digest,
		EventCount:      result.EventCount,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if url := cfg.Notification.WebhookURL; url != "" {
		n, err := webhook.New(webhook.Config{URL: url, Headers: cfg.Notification.WebhookHeaders})
		if err != nil {
			logger.Warnf("export: webhook notifier config: %v", err)
		} else {
			defer n.Close()
			if err := n.Publish(ctx, event); err != nil {
				logger.Warnf("export: webhook notify failed: %v", err)
			}
		}
	}

	if addr := cfg.Notification.RedisAddr; addr != "" {
		n, err := redis.New(redis.Config{URL: addr, Channel: cfg.Notification.RedisChannel})
		if err != nil {
			logger.Warnf("export: redis notifier config: %v", err)
		} else {
			defer n.Close()
			if err := n.Publish(ctx, event); err != nil {
				logger.Warnf("export: redis notify failed: %v", err)
			}
		}
	}
}
