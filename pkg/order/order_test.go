package order

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	before := time.Now()
	o := New()
	after := time.Now()

	if o == nil {
		t.Fatal("New() returned nil")
	}
	if o.ID != "" {
		t.Errorf("New() ID = %q, want empty", o.ID)
	}
	if o.DisplayID != "" {
		t.Errorf("New() DisplayID = %q, want empty", o.DisplayID)
	}
	if o.Items == nil || len(o.Items) != 0 {
		t.Errorf("New() Items = %v, want empty non-nil slice", o.Items)
	}
	if o.Discount != 0 {
		t.Errorf("New() Discount = %v, want 0", o.Discount)
	}
	if o.State != "" {
		t.Errorf("New() State = %q, want empty", o.State)
	}
	if o.Comment != "" {
		t.Errorf("New() Comment = %q, want empty", o.Comment)
	}
	if o.SubmittedAt.Before(before) || o.SubmittedAt.After(after) {
		t.Errorf("New() SubmittedAt = %v, want between %v and %v", o.SubmittedAt, before, after)
	}
	if o.StartedAt.Before(before) || o.StartedAt.After(after) {
		t.Errorf("New() StartedAt = %v, want between %v and %v", o.StartedAt, before, after)
	}
	if !o.IsDraft() {
		t.Error("New() order should be a draft")
	}
}

func TestOrderSameAs(t *testing.T) {
	a := New()
	b := New()

	tests := []struct {
		name string
		a    *Order
		b    *Order
		want bool
	}{
		{name: "freshOrdersAreDistinct", a: a, b: b, want: false},
		{name: "orderIsItself", a: a, b: a, want: true},
		{name: "nilOther", a: a, b: nil, want: false},
		{name: "sameBackendID", a: &Order{ID: "ord-1"}, b: &Order{ID: "ord-1", Comment: "x"}, want: true},
		{name: "differentBackendID", a: &Order{ID: "ord-1"}, b: &Order{ID: "ord-2"}, want: false},
		{name: "oneDraft", a: &Order{ID: "ord-1"}, b: &Order{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SameAs(tt.b); got != tt.want {
				t.Errorf("SameAs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderSameAsIgnoresEqualFields(t *testing.T) {
	a := New()
	b := a.Clone()

	if a.SameAs(b) {
		t.Error("two drafts with identical fields must not be the same order")
	}
}

func TestOrderClone(t *testing.T) {
	o := New()
	o.Items = append(o.Items, OrderItem{ID: "i1", Name: "Latte", Quantity: 1})

	c := o.Clone()
	c.Items[0].Quantity = 5

	if o.Items[0].Quantity != 1 {
		t.Errorf("Clone() shares items with the original: quantity = %d", o.Items[0].Quantity)
	}
}

func TestOrderItemCount(t *testing.T) {
	o := &Order{Items: []OrderItem{{Quantity: 2}, {Quantity: 3}}}
	if got := o.ItemCount(); got != 5 {
		t.Errorf("ItemCount() = %d, want 5", got)
	}
}

func TestOrderUnmarshalNormalizesItems(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "nullItems", json: `{"id":"ord-1","items":null}`},
		{name: "missingItems", json: `{"id":"ord-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Order
			if err := json.Unmarshal([]byte(tt.json), &o); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if o.Items == nil {
				t.Error("Items should never be nil after decoding")
			}
			if o.ID != "ord-1" {
				t.Errorf("ID = %q, want ord-1", o.ID)
			}
		})
	}
}

func TestOrderWireFieldNames(t *testing.T) {
	raw, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, name := range []string{"submitted_at", "id", "display_id", "items", "discount", "state", "started_at", "comment"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("wire shape is missing %q", name)
		}
	}
	if len(fields) != 8 {
		t.Errorf("wire shape has %d fields, want 8", len(fields))
	}
}
