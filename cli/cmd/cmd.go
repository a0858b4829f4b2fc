// Package cmd provides the CLI commands for the vifei binary: view,
// export, tour, compare, incident-pack, and verify, per the CLI contract
// this system was distilled from. The CLI is an external collaborator
// per spec.md §1 — it reads committed logs and consumes view models, but
// never mutates core determinism semantics.
package cmd

// Exit codes per spec.md §6 / EXTERNAL INTERFACES.
const (
	ExitSuccess     = 0
	ExitNotFound    = 1
	ExitInvalidArgs = 2
	ExitRefused     = 3
	ExitRuntime     = 4
	ExitDiffFound   = 5
)

// ROBOTSchemaVersion is the pinned machine-readable CLI contract version.
const ROBOTSchemaVersion = "vifei-cli-robot-v1.1"

// QuickHelp is the short usage summary shown by the top-level help text.
const QuickHelp = `vifei — deterministic AI run recorder
Usage: vifei [--json|--human] <command> [args]
Commands:
  view <eventlog.jsonl> [--profile standard|showcase]
  export <eventlog.jsonl> --share-safe --output <bundle.tar.zst> [--refusal-report <path>]
  tour <fixture.jsonl> --stress [--output-dir <dir>]
  compare <left.jsonl> <right.jsonl> [--left-format eventlog|cassette] [--right-format eventlog|cassette]
  incident-pack <left.jsonl> <right.jsonl> [--left-format eventlog|cassette] [--right-format eventlog|cassette] [--output-dir <dir>]
  verify --strict [--full] [--fixture <fixture.jsonl>] [--output-dir <dir>]
Tips:
  vifei --help
  vifei <command> --help`
