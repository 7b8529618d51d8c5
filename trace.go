package magma

// RoundRecord is the register state after one encryption round.
type RoundRecord struct {
	// Left is the left register after the round's swap, i.e. the previous
	// right register.
	Left uint32 `json:"left"`

	// Right is the value produced by the round.
	Right uint32 `json:"right"`

	// Subkey is the round key consumed by the round.
	Subkey uint32 `json:"subkey"`
}

// Trace lists the rounds of one block encryption in round order.
type Trace []RoundRecord

// traceRecorder collects round records. A nil recorder drops them.
type traceRecorder struct {
	records Trace
}

func newTraceRecorder() *traceRecorder {
	return &traceRecorder{records: make(Trace, 0, Rounds)}
}

func (r *traceRecorder) record(left, right, subkey uint32) {
	if r == nil {
		return
	}
	r.records = append(r.records, RoundRecord{
		Left:   left,
		Right:  right,
		Subkey: subkey,
	})
}
