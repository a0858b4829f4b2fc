package types

// ViewModel is the projection of State, plus the pinned invariants
// version that identifies its shape. Field order is fixed here and
// honored by json.Marshal's struct-field ordering; canonical serialization
// for digesting is the projection package's responsibility, not this
// struct's.
type ViewModel struct {
	ProjectionInvariantsVersion string             `json:"projection_invariants_version"`
	EventCount                  uint64             `json:"event_count"`
	TierADrops                  uint64             `json:"tier_a_drops"`
	DegradationLevel            LadderLevel        `json:"degradation_level"`
	AggregationMode             AggregationMode    `json:"aggregation_mode"`
	AggregationBinSize          *int64             `json:"aggregation_bin_size,omitempty"`
	QueuePressure               float64            `json:"queue_pressure"`
	ExportSafetyState           ExportSafetyState  `json:"export_safety_state"`
	Transitions                 []PolicyTransition `json:"transitions"`
}
