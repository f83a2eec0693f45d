package ingest

// Summary counts the per-row outcomes of one ingested batch. At successful
// completion Created+Updated+Skipped equals the number of records processed.
type Summary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Total returns the number of records accounted for.
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Skipped
}

// action is the classified outcome for a single record.
type action int

const (
	actionCreated action = iota
	actionUpdated
	actionSkipped
)

func (s *Summary) add(a action) {
	switch a {
	case actionCreated:
		s.Created++
	case actionUpdated:
		s.Updated++
	case actionSkipped:
		s.Skipped++
	}
}
