package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/vifei/adapter/cassette"
	"github.com/justapithecus/vifei/blob"
	"github.com/justapithecus/vifei/eventlog"
	"github.com/justapithecus/vifei/types"
)

// loadImportEvents reads path under the given format ("eventlog" or
// "cassette") and returns it as a plain ImportEvent sequence, suitable
// for the comparator, which is agnostic to whether either side came from
// a fresh parse or a committed log.
func loadImportEvents(path, format string) ([]types.ImportEvent, error) {
	switch format {
	case "", "eventlog":
		committed, err := eventlog.Read(path)
		if err != nil {
			return nil, err
		}
		out := make([]types.ImportEvent, len(committed))
		for i, ev := range committed {
			out[i] = ev.ImportEvent
		}
		return out, nil
	case "cassette":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return cassette.Parse(f)
	default:
		return nil, fmt.Errorf("unknown input format %q (want eventlog or cassette)", format)
	}
}

// loadCommittedLog reads path's raw bytes plus its decoded committed
// events, as bundle.Build requires both: the raw bytes are embedded
// verbatim as eventlog.jsonl, the decoded events drive the scan and
// manifest.
func loadCommittedLog(path string) (raw []byte, events []types.CommittedEvent, err error) {
	raw, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	events, err = eventlog.Read(path)
	if err != nil {
		return nil, nil, err
	}
	return raw, events, nil
}

// blobDirFlag is the shared --blob-dir flag: the blob store backing an
// event log defaults to a "blobs" directory next to it.
var blobDirFlag = &cli.StringFlag{
	Name:  "blob-dir",
	Usage: "Blob store root directory (default: <eventlog-dir>/blobs)",
}

// resolveBlobDir applies the default-next-to-eventlog convention.
func resolveBlobDir(c *cli.Context, eventlogPath string) string {
	if dir := c.String("blob-dir"); dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(eventlogPath), "blobs")
}

// openBlobStore opens the filesystem blob store backend for eventlogPath,
// honoring --blob-dir.
func openBlobStore(c *cli.Context, eventlogPath string) (blob.Backend, error) {
	return blob.Open(resolveBlobDir(c, eventlogPath))
}
