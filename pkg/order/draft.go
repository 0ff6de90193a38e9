package order

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft is the client-editable part of an order. Key identifies the draft
// locally before the backend assigns an order id.
type Draft struct {
	Key       uuid.UUID   `json:"key" bson:"_id"`
	Items     []OrderItem `json:"items" bson:"items"`
	Discount  float64     `json:"discount" bson:"discount"`
	Comment   string      `json:"comment" bson:"comment"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

func NewDraft() Draft {
	now := time.Now()
	return Draft{
		Key:       uuid.New(),
		Items:     []OrderItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnsureKey assigns a key to drafts decoded without one.
func (d *Draft) EnsureKey() {
	if d.Key == uuid.Nil {
		d.Key = uuid.New()
	}
	if d.Items == nil {
		d.Items = []OrderItem{}
	}
}

// AddItem appends item, or increases the quantity of the line with the same
// product and comment.
func (d *Draft) AddItem(item OrderItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range d.Items {
		if d.Items[i].ProductID == item.ProductID && d.Items[i].Comment == item.Comment && item.ProductID != "" {
			d.Items[i].Quantity += item.Quantity
			d.touch()
			return
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	d.Items = append(d.Items, item)
	d.touch()
}

// RemoveItem drops the line with the given id. It reports whether a line
// was removed.
func (d *Draft) RemoveItem(itemID string) bool {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.touch()
			return true
		}
	}
	return false
}

// SetQuantity updates a line. A quantity of zero or less removes it.
func (d *Draft) SetQuantity(itemID string, quantity int) bool {
	if quantity <= 0 {
		return d.RemoveItem(itemID)
	}
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			d.Items[i].Quantity = quantity
			d.touch()
			return true
		}
	}
	return false
}

// SetDiscount stores the value as given. Range checks happen in Validate.
func (d *Draft) SetDiscount(discount float64) {
	d.Discount = discount
	d.touch()
}

func (d *Draft) SetComment(comment string) {
	d.Comment = strings.TrimSpace(comment)
	d.touch()
}

// IsEmpty reports whether the draft has no line items.
func (d *Draft) IsEmpty() bool {
	return len(d.Items) == 0
}

// Validate checks the draft before it is sent for persistence.
func (d *Draft) Validate() []string {
	var errors []string

	if len(d.Items) == 0 {
		errors = append(errors, "order has no items")
	}

	switch {
	case !Finite(d.Discount):
		errors = append(errors, "discount must be a finite number")
	case d.Discount < 0:
		errors = append(errors, "discount cannot be negative")
	}

	for i, item := range d.Items {
		if item.Quantity <= 0 {
			errors = append(errors, fmt.Sprintf("item %d: quantity must be greater than 0", i+1))
		}
		switch {
		case !Finite(item.Price):
			errors = append(errors, fmt.Sprintf("item %d: price must be a finite number", i+1))
		case item.Price < 0:
			errors = append(errors, fmt.Sprintf("item %d: price cannot be negative", i+1))
		}
	}

	return errors
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now()
}

// Merge joins backend-owned and client-edited fields into the order sent to
// the backend. A zero record yields a fresh order with New defaults.
func Merge(rec Record, d Draft) *Order {
	o := New()
	if !rec.IsZero() {
		o.ID = rec.id
		o.DisplayID = rec.displayID
		o.State = rec.state
		o.SubmittedAt = rec.submittedAt
		o.StartedAt = rec.startedAt
	}
	o.Items = make([]OrderItem, len(d.Items))
	copy(o.Items, d.Items)
	o.Discount = d.Discount
	o.Comment = d.Comment
	return o
}
