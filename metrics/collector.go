// Package metrics provides process-level observability counters for a
// single pipeline run. These are never part of any digest or bundle —
// they exist purely so an operator running the CLI can see what the
// pipeline did. The Collector is a leaf package with no internal
// dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters. Returned
// by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Adapter / ingestion
	EventsParsed    int64
	EventsCommitted int64
	TierADrops      int64
	ContractErrors  map[string]int64

	// Blob store
	BlobWriteSuccess int64
	BlobWriteFailure int64

	// Export
	BundleExports   int64
	BundleRefusals  int64
	ScannerHits     int64

	// Notification
	NotifySuccess int64
	NotifyFailure int64

	// Dimensions (informational, set at construction)
	SourceID string
	RunID    string
}

// Collector accumulates metrics during a single run. Thread-safe via
// sync.Mutex. All increment methods are nil-receiver safe, so a caller
// that chooses not to wire metrics can pass a nil *Collector everywhere
// without branching.
type Collector struct {
	mu sync.Mutex

	eventsParsed    int64
	eventsCommitted int64
	tierADrops      int64
	contractErrors  map[string]int64

	blobWriteSuccess int64
	blobWriteFailure int64

	bundleExports  int64
	bundleRefusals int64
	scannerHits    int64

	notifySuccess int64
	notifyFailure int64

	sourceID string
	runID    string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sourceID, runID string) *Collector {
	return &Collector{
		contractErrors: make(map[string]int64),
		sourceID:       sourceID,
		runID:          runID,
	}
}

// --- Adapter / ingestion ---

// IncEventsParsed records one record read from the source stream.
func (c *Collector) IncEventsParsed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsParsed++
	c.mu.Unlock()
}

// IncEventsCommitted records one event appended to the log.
func (c *Collector) IncEventsCommitted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsCommitted++
	c.mu.Unlock()
}

// IncTierADrop records a Tier A event lost via a drop marker. A nonzero
// total at run end is a run-level failure.
func (c *Collector) IncTierADrop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.tierADrops++
	c.mu.Unlock()
}

// IncContractError records a per-record adapter contract failure, keyed
// by the contract error's kind.
func (c *Collector) IncContractError(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.contractErrors[kind]++
	c.mu.Unlock()
}

// --- Blob store ---

// IncBlobWriteSuccess records a successful blob write.
func (c *Collector) IncBlobWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.blobWriteSuccess++
	c.mu.Unlock()
}

// IncBlobWriteFailure records a failed blob write.
func (c *Collector) IncBlobWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.blobWriteFailure++
	c.mu.Unlock()
}

// --- Export ---

// IncBundleExport records a successfully written bundle.
func (c *Collector) IncBundleExport() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bundleExports++
	c.mu.Unlock()
}

// IncBundleRefusal records an export refused by the secret scanner.
func (c *Collector) IncBundleRefusal() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bundleRefusals++
	c.mu.Unlock()
}

// IncScannerHit records one BlockedItem produced by a scan, independent
// of whether the containing export was ultimately refused.
func (c *Collector) IncScannerHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.scannerHits++
	c.mu.Unlock()
}

// --- Notification ---

// IncNotifySuccess records a successful post-export notification.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifySuccess++
	c.mu.Unlock()
}

// IncNotifyFailure records a failed post-export notification. Notify
// failures never fail the export itself (§notify is best-effort).
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics. The
// returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	contractErrors := make(map[string]int64, len(c.contractErrors))
	for k, v := range c.contractErrors {
		contractErrors[k] = v
	}

	return Snapshot{
		EventsParsed:    c.eventsParsed,
		EventsCommitted: c.eventsCommitted,
		TierADrops:      c.tierADrops,
		ContractErrors:  contractErrors,

		BlobWriteSuccess: c.blobWriteSuccess,
		BlobWriteFailure: c.blobWriteFailure,

		BundleExports:  c.bundleExports,
		BundleRefusals: c.bundleRefusals,
		ScannerHits:    c.scannerHits,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		SourceID: c.sourceID,
		RunID:    c.runID,
	}
}
