// Package order holds the order representation shared by every view of the
// point-of-sale console and by the backend data layer that supplies it.
//
// Order is the wire shape exchanged with the backend. Record and Draft split
// it into the part the backend owns and the part a view may edit; Merge joins
// them back when a draft is submitted.
package order

import (
	"encoding/json"
	"time"
)

// Order is one customer order as displayed and edited across views.
// Field names and types are the contract with the backend order service.
type Order struct {
	SubmittedAt time.Time   `json:"submitted_at" bson:"submitted_at"`
	ID          string      `json:"id" bson:"id"`
	DisplayID   string      `json:"display_id" bson:"display_id"`
	Items       []OrderItem `json:"items" bson:"items"`
	Discount    float64     `json:"discount" bson:"discount"`
	State       string      `json:"state" bson:"state"`
	StartedAt   time.Time   `json:"started_at" bson:"started_at"`
	Comment     string      `json:"comment" bson:"comment"`
}

// New returns an order with safe defaults. Construction cannot fail.
func New() *Order {
	now := time.Now()
	return &Order{
		SubmittedAt: now,
		ID:          "",
		DisplayID:   "",
		Items:       []OrderItem{},
		Discount:    0,
		State:       "",
		StartedAt:   now,
		Comment:     "",
	}
}

// IsDraft reports whether the backend has not assigned an id yet.
func (o *Order) IsDraft() bool {
	return o.ID == ""
}

// SameAs reports whether o and other denote the same order entity.
// Until the backend assigns an id, an order is only the same as itself.
func (o *Order) SameAs(other *Order) bool {
	if o == nil || other == nil {
		return false
	}
	if o == other {
		return true
	}
	if o.ID == "" || other.ID == "" {
		return false
	}
	return o.ID == other.ID
}

// Clone returns a deep copy. Items are owned by their order and never shared.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

// ItemCount returns the number of units across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Split separates the backend-owned fields from the client-editable ones.
func (o *Order) Split() (Record, Draft) {
	d := NewDraft()
	d.Items = make([]OrderItem, len(o.Items))
	copy(d.Items, o.Items)
	d.Discount = o.Discount
	d.Comment = o.Comment
	return RecordFrom(o), d
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Order(a)
	o.ensureItems()
	return nil
}

func (o *Order) ensureItems() {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
}
