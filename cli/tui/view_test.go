package tui

import (
	"strings"
	"testing"

	"github.com/justapithecus/vifei/types"
)

func TestRenderViewStaticIncludesCoreFields(t *testing.T) {
	binSize := int64(8)
	vm := types.ViewModel{
		ProjectionInvariantsVersion: types.ProjectionInvariantsVersion,
		EventCount:                  3,
		TierADrops:                  1,
		DegradationLevel:            types.L2,
		AggregationMode:             types.AggregationBinned,
		AggregationBinSize:          &binSize,
		QueuePressure:               0.42,
		ExportSafetyState:           types.ExportSafetyDirty,
		Transitions: []types.PolicyTransition{
			{FromLevel: types.L0, ToLevel: types.L1, Trigger: "queue_pressure", QueuePressureMicros: 500000},
		},
	}

	out := RenderViewStatic(vm, "deadbeef", 3, "standard")

	for _, want := range []string{"L2", "binned", "0.420", "dirty", "deadbeef", "L0", "L1", "queue_pressure"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderViewStatic output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderViewStaticShowcaseProfileChangesFramingOnly(t *testing.T) {
	vm := types.ViewModel{DegradationLevel: types.L0, ExportSafetyState: types.ExportSafetyClean}

	standard := RenderViewStatic(vm, "hash", 0, "standard")
	showcase := RenderViewStatic(vm, "hash", 0, "showcase")

	if standard == showcase {
		t.Error("expected showcase profile to differ in framing from standard")
	}
	if !strings.Contains(showcase, "Run View") || !strings.Contains(standard, "Run View") {
		t.Error("both profiles must render the same underlying title text")
	}
}

func TestRenderPressureMeterClampsDisplay(t *testing.T) {
	over := renderPressureMeter(1.5)
	if !strings.Contains(over, "1.500") {
		t.Errorf("expected raw value preserved in label, got %q", over)
	}

	under := renderPressureMeter(-0.2)
	if !strings.Contains(under, "-0.200") {
		t.Errorf("expected raw value preserved in label, got %q", under)
	}
}
