package order

import "time"

// Record carries the fields the backend assigns. Views can read them but
// have no way to change them; a new Record only comes from a backend Order.
type Record struct {
	id          string
	displayID   string
	state       string
	submittedAt time.Time
	startedAt   time.Time
}

// RecordFrom captures the backend-owned fields of o.
func RecordFrom(o *Order) Record {
	if o == nil {
		return Record{}
	}
	return Record{
		id:          o.ID,
		displayID:   o.DisplayID,
		state:       o.State,
		submittedAt: o.SubmittedAt,
		startedAt:   o.StartedAt,
	}
}

func (r Record) ID() string             { return r.id }
func (r Record) DisplayID() string      { return r.displayID }
func (r Record) State() string          { return r.state }
func (r Record) SubmittedAt() time.Time { return r.submittedAt }
func (r Record) StartedAt() time.Time   { return r.startedAt }

// IsZero reports whether the record belongs to an order never persisted.
func (r Record) IsZero() bool {
	return r.id == ""
}
