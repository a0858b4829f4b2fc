// Package tour implements the stress/proof harness: it replays a fixture
// end-to-end through the reducer and projection, and writes a four-file
// artifact directory (metrics.json, viewmodel.hash, ansi.capture,
// timetravel.capture) that downstream CI checks can assert against.
package tour

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"

	"github.com/justapithecus/vifei/projection"
	"github.com/justapithecus/vifei/reducer"
	"github.com/justapithecus/vifei/types"
)

// DegradationTransition is one entry in TourMetrics.DegradationTransitions,
// derived directly from the reducer's PolicyTransition list — never an
// independently-tracked value.
type DegradationTransition struct {
	FromLevel     types.LadderLevel `json:"from_level"`
	ToLevel       types.LadderLevel `json:"to_level"`
	Trigger       string            `json:"trigger"`
	QueuePressure float64           `json:"queue_pressure"`
}

// Metrics is the shape of metrics.json.
type Metrics struct {
	ProjectionInvariantsVersion string                  `json:"projection_invariants_version"`
	EventCountTotal             int                     `json:"event_count_total"`
	TierADrops                  uint64                  `json:"tier_a_drops"`
	MaxDegradationLevel         types.LadderLevel        `json:"max_degradation_level"`
	DegradationLevelFinal       types.LadderLevel        `json:"degradation_level_final"`
	DegradationTransitions      []DegradationTransition `json:"degradation_transitions"`
	AggregationMode             types.AggregationMode   `json:"aggregation_mode"`
	AggregationBinSize          *int64                  `json:"aggregation_bin_size,omitempty"`
	QueuePressure               float64                 `json:"queue_pressure"`
	ExportSafetyState           types.ExportSafetyState `json:"export_safety_state"`
}

// SeekPoint is one entry in TimeTravelCapture.SeekPoints: the state after
// replaying events [0, commit_index].
type SeekPoint struct {
	CommitIndex   uint64 `json:"commit_index"`
	StateHash     string `json:"state_hash"`
	ViewModelHash string `json:"viewmodel_hash"`
}

// TimeTravelCapture is the shape of timetravel.capture.
type TimeTravelCapture struct {
	ProjectionInvariantsVersion string      `json:"projection_invariants_version"`
	SeekPoints                  []SeekPoint `json:"seek_points"`
}

// Result is what Run returns, mirroring what gets written to disk.
type Result struct {
	ViewModelHash string
	Metrics       Metrics
}

// Run replays events through the reducer one at a time, capturing a
// SeekPoint after each commit, projects the final ViewModel, and writes
// all four artifacts to outputDir.
func Run(events []types.CommittedEvent, outputDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("tour: create %s: %w", outputDir, err)
	}

	state := types.NewState()
	seekPoints := make([]SeekPoint, 0, len(events))
	for _, ev := range events {
		next, err := reducer.Reduce(state, ev)
		if err != nil {
			return nil, fmt.Errorf("tour: reduce commit_index=%d: %w", ev.CommitIndex, err)
		}
		state = next

		stateHash, err := hashState(state)
		if err != nil {
			return nil, err
		}
		vm := projection.Project(state)
		vmHash, err := projection.Digest(vm)
		if err != nil {
			return nil, fmt.Errorf("tour: digest at commit_index=%d: %w", ev.CommitIndex, err)
		}
		seekPoints = append(seekPoints, SeekPoint{
			CommitIndex:   ev.CommitIndex,
			StateHash:     stateHash,
			ViewModelHash: vmHash,
		})
	}

	vm := projection.Project(state)
	vmHash, err := projection.Digest(vm)
	if err != nil {
		return nil, fmt.Errorf("tour: final digest: %w", err)
	}

	metrics := buildMetrics(state, vm, len(events))

	if err := writeJSON(filepath.Join(outputDir, "metrics.json"), metrics); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "viewmodel.hash"), []byte(vmHash+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("tour: write viewmodel.hash: %w", err)
	}
	ansi := renderANSICapture(vm, len(events), vmHash)
	if err := os.WriteFile(filepath.Join(outputDir, "ansi.capture"), []byte(ansi), 0o644); err != nil {
		return nil, fmt.Errorf("tour: write ansi.capture: %w", err)
	}
	timetravel := TimeTravelCapture{
		ProjectionInvariantsVersion: vm.ProjectionInvariantsVersion,
		SeekPoints:                  seekPoints,
	}
	if err := writeJSON(filepath.Join(outputDir, "timetravel.capture"), timetravel); err != nil {
		return nil, err
	}

	return &Result{ViewModelHash: vmHash, Metrics: metrics}, nil
}

func hashState(state types.State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("tour: encode state for hash: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func buildMetrics(state types.State, vm types.ViewModel, eventCount int) Metrics {
	transitions := make([]DegradationTransition, len(state.Transitions))
	maxLevel := vm.DegradationLevel
	for i, t := range state.Transitions {
		transitions[i] = DegradationTransition{
			FromLevel:     t.FromLevel,
			ToLevel:       t.ToLevel,
			Trigger:       t.Trigger,
			QueuePressure: float64(t.QueuePressureMicros) / float64(types.QueuePressureScale),
		}
		if types.LadderRank(t.ToLevel) > types.LadderRank(maxLevel) {
			maxLevel = t.ToLevel
		}
	}

	return Metrics{
		ProjectionInvariantsVersion: vm.ProjectionInvariantsVersion,
		EventCountTotal:             eventCount,
		TierADrops:                  vm.TierADrops,
		MaxDegradationLevel:         maxLevel,
		DegradationLevelFinal:       vm.DegradationLevel,
		DegradationTransitions:      transitions,
		AggregationMode:             vm.AggregationMode,
		AggregationBinSize:          vm.AggregationBinSize,
		QueuePressure:               vm.QueuePressure,
		ExportSafetyState:           vm.ExportSafetyState,
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("tour: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tour: write %s: %w", path, err)
	}
	return nil
}

const (
	ansiReset     = "\x1b[0m"
	ansiBold      = "\x1b[1m"
	ansiFgGreen   = "\x1b[32m"
	ansiFgYellow  = "\x1b[33m"
	ansiFgRed     = "\x1b[31m"
	ansiFgWhite   = "\x1b[37m"
	ansiFgMagenta = "\x1b[35m"
	ansiFgGray    = "\x1b[90m"
)

func ansiLevelColor(level types.LadderLevel) string {
	switch level {
	case types.L0:
		return ansiFgGreen
	case types.L1, types.L2, types.L3:
		return ansiFgYellow
	default:
		return ansiFgRed
	}
}

func ansiDropsColor(drops uint64) string {
	if drops > 0 {
		return ansiFgRed
	}
	return ansiFgGreen
}

func ansiExportColor(state types.ExportSafetyState) string {
	switch state {
	case types.ExportSafetyUnknown:
		return ansiFgGray
	case types.ExportSafetyClean:
		return ansiFgGreen
	default:
		return ansiFgRed
	}
}

func ansiPressureColor(pct int) string {
	switch {
	case pct >= 80:
		return ansiFgRed
	case pct >= 50:
		return ansiFgYellow
	default:
		return ansiFgGreen
	}
}

// renderANSICapture renders a deterministic ANSI snapshot of vm: same
// ViewModel always produces identical bytes, without depending on a
// terminal rendering library. Its colors follow their own thresholds
// rather than the live TUI's styles: L4 and a dirty export render red
// here, while the TUI renders both in its warning color.
func renderANSICapture(vm types.ViewModel, eventCount int, vmHash string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s╔══════════════════════════════════════════════════════════════╗%s\n", ansiFgMagenta, ansiBold, ansiReset)
	fmt.Fprintf(&b, "%s%s║  Vifei Tour · ansi.capture                             ║%s\n", ansiFgMagenta, ansiBold, ansiReset)
	fmt.Fprintf(&b, "%s%s╚══════════════════════════════════════════════════════════════╝%s\n", ansiFgMagenta, ansiBold, ansiReset)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "%s%s── Truth HUD ──%s\n", ansiFgMagenta, ansiBold, ansiReset)

	levelColor := ansiLevelColor(vm.DegradationLevel)
	fmt.Fprintf(&b, "  %sLevel:%s    %s%s%s\n", ansiFgWhite, ansiReset, levelColor, vm.DegradationLevel, ansiReset)

	aggDisplay := string(vm.AggregationMode)
	if vm.AggregationBinSize != nil {
		aggDisplay = fmt.Sprintf("%s (bin=%d)", vm.AggregationMode, *vm.AggregationBinSize)
	}
	fmt.Fprintf(&b, "  %sAgg:%s      %s\n", ansiFgWhite, ansiReset, aggDisplay)

	pressurePct := int(vm.QueuePressure * 100)
	pressureColor := ansiPressureColor(pressurePct)
	fmt.Fprintf(&b, "  %sPressure:%s %s%d%%%s\n", ansiFgWhite, ansiReset, pressureColor, pressurePct, ansiReset)

	dropsColor := ansiDropsColor(vm.TierADrops)
	fmt.Fprintf(&b, "  %sDrops:%s    %s%d%s\n", ansiFgWhite, ansiReset, dropsColor, vm.TierADrops, ansiReset)

	exportColor := ansiExportColor(vm.ExportSafetyState)
	fmt.Fprintf(&b, "  %sExport:%s   %s%s%s\n", ansiFgWhite, ansiReset, exportColor, vm.ExportSafetyState, ansiReset)

	fmt.Fprintf(&b, "  %sVersion:%s  %s%s%s\n", ansiFgGray, ansiReset, ansiFgGray, vm.ProjectionInvariantsVersion, ansiReset)

	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "%s%s── Summary ──%s\n", ansiFgMagenta, ansiBold, ansiReset)
	fmt.Fprintf(&b, "  %sEvents:%s   %d\n", ansiFgWhite, ansiReset, eventCount)
	fmt.Fprintf(&b, "  %sHash:%s     %s\n", ansiFgWhite, ansiReset, vmHash)

	return b.String()
}
