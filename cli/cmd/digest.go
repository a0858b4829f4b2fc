package cmd

import (
	"fmt"

	"github.com/justapithecus/vifei/projection"
	"github.com/justapithecus/vifei/reducer"
	"github.com/justapithecus/vifei/types"
)

// viewModelDigestFor replays events and returns the resulting view-model
// digest, the same determinism witness the verify and tour commands use.
func viewModelDigestFor(events []types.CommittedEvent) (string, error) {
	state, err := reducer.ReduceAll(events)
	if err != nil {
		return "", fmt.Errorf("reduce: %w", err)
	}
	vm := projection.Project(state)
	digest, err := projection.Digest(vm)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return digest, nil
}
