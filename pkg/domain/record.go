package domain

// RecordKind tags a trace record.
type RecordKind string

const (
	RecordHeader   RecordKind = "header"
	RecordPathHead RecordKind = "path_header"
	RecordStep     RecordKind = "step"
	RecordSummary  RecordKind = "summary"
)

// Record is one human-readable line of a trace, as handed to a sink.
// Step records fill Step/Left/State/Right; the others only carry Text.
type Record struct {
	Kind    RecordKind `json:"kind"`
	Machine string     `json:"machine"`
	Input   string     `json:"input"`
	Step    int        `json:"step,omitempty"`
	Left    string     `json:"left,omitempty"`
	State   string     `json:"state,omitempty"`
	Right   string     `json:"right,omitempty"`
	Verdict Verdict    `json:"verdict,omitempty"`
	Text    string     `json:"text"`
}
