package diaglog

// Entry is one immutable diagnostic record.
//
// ID is assigned by whichever sink durably accepts the entry. Entries that
// only reached the console fallback carry a locally generated, non-persistent
// ID. Timestamp is assigned by the facade at log-call time (milliseconds
// since epoch) so ordering is consistent across sinks.
type Entry struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Details   any      `json:"details,omitempty"`
}
