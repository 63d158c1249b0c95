// Package domain defines the core business types for the rent notifier.
package domain

// Listing is one advertised rental unit. Building-level fields are repeated
// on every unit of the same building group. URL is the identity key: two
// listings with the same URL are the same listing.
type Listing struct {
	// Building
	BuildingName   string `json:"building_name"`
	NearestStation string `json:"nearest_station"`
	BuildingAge    string `json:"building_age"`

	// Pricing, kept as the raw display strings from the page.
	Rent              string `json:"rent"`
	AdministrationFee string `json:"administration_fee"`
	Deposit           string `json:"deposit"`
	Gratuity          string `json:"gratuity"`

	// Unit
	FloorPlan   string `json:"floor_plan"`
	FloorArea   string `json:"floor_area"`
	FloorNumber string `json:"floor_number"`

	URL string `json:"url"`
}

// RunState names a stage of the pipeline state machine.
type RunState string

// Run states, in the order a complete run visits them.
const (
	StateIdle           RunState = "idle"
	StateFetching       RunState = "fetching"
	StateParsing        RunState = "parsing"
	StateExtracting     RunState = "extracting"
	StateLoadingHistory RunState = "loading_history"
	StateDeduplicating  RunState = "deduplicating"
	StateComposing      RunState = "composing"
	StateNotifying      RunState = "notifying"
	StatePersisting     RunState = "persisting"
	StateDoneNoNew      RunState = "done_no_new"
	StateTerminated     RunState = "terminated"
	StateFailed         RunState = "failed"
)

// RunSummary records what a single run did.
type RunSummary struct {
	RunID string `json:"run_id"`

	Buildings   int `json:"buildings"`
	Extracted   int `json:"extracted"`
	SkippedRows int `json:"skipped_rows"`
	NewListings int `json:"new_listings"`

	DigestChars int  `json:"digest_chars"`
	Truncated   bool `json:"truncated"`

	Notified  bool   `json:"notified"`
	NotifyErr string `json:"notify_error,omitempty"`

	Persisted int `json:"persisted"`

	// State is the last state reached; StateTerminated on a normal finish,
	// StateDoneNoNew when nothing new was found, StateFailed on a fatal error.
	State RunState `json:"state"`
	// FailedAt is the stage that failed when State is StateFailed.
	FailedAt RunState `json:"failed_at,omitempty"`
}
