package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/types"
)

// VersionResponse is the response for the version command. The library
// and the CLI share a single release version; the projection, manifest,
// adapter contract and robot CLI contract each carry their own pinned
// version string, reported alongside it.
type VersionResponse struct {
	Version            string `json:"version"`
	Commit             string `json:"commit"`
	ProjectionVersion  string `json:"projection_invariants_version"`
	ManifestVersion    string `json:"manifest_version"`
	AdapterContract    string `json:"adapter_contract_version"`
	RobotSchemaVersion string `json:"robot_schema_version"`
}

// VersionCommand returns the version command. commit is the build-time
// VCS revision, supplied by cmd/vifei's linker flags ("unknown" when not
// set at build time).
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  GlobalFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		resp := VersionResponse{
			Version:            types.Version,
			Commit:             commit,
			ProjectionVersion:  types.ProjectionInvariantsVersion,
			ManifestVersion:    types.ManifestVersion,
			AdapterContract:    types.AdapterContractVersion,
			RobotSchemaVersion: ROBOTSchemaVersion,
		}

		if !wantsJSON(c) {
			fmt.Printf("vifei %s (commit %s)\n", resp.Version, displayCommit(commit))
			fmt.Printf("  projection invariants: %s\n", resp.ProjectionVersion)
			fmt.Printf("  manifest:              %s\n", resp.ManifestVersion)
			fmt.Printf("  adapter contract:      %s\n", resp.AdapterContract)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
}

func displayCommit(commit string) string {
	if commit == "" {
		return "unknown"
	}
	return commit
}
