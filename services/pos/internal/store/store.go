// Package store keeps the console's client-side state: the draft each
// terminal is editing and the quick-add product catalog.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/appetiteclub/pos/pkg/order"
)

var ErrNotFound = errors.New("not found")

// Product is a quick-add entry shown on the order entry view.
type Product struct {
	ID        string  `json:"id" bson:"_id"`
	Name      string  `json:"name" bson:"name"`
	Category  string  `json:"category" bson:"category"`
	Price     float64 `json:"price" bson:"price"`
	SortOrder int     `json:"sort_order" bson:"sort_order"`
}

// Item converts the product into an order line.
func (p Product) Item(quantity int) order.OrderItem {
	return order.OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
		Price:     p.Price,
	}
}

// Store is the state store registered at startup.
type Store interface {
	Draft(ctx context.Context, session string) (order.Draft, error)
	SaveDraft(ctx context.Context, session string, d order.Draft) error
	DeleteDraft(ctx context.Context, session string) error

	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id string) (Product, error)
	SaveProduct(ctx context.Context, p Product) error
}

// LoadDraft returns the session's draft, or a new one when none is stored.
func LoadDraft(ctx context.Context, s Store, session string) (order.Draft, error) {
	d, err := s.Draft(ctx, session)
	if errors.Is(err, ErrNotFound) {
		return order.NewDraft(), nil
	}
	if err != nil {
		return order.Draft{}, err
	}
	d.EnsureKey()
	return d, nil
}

func sortProducts(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		if products[i].SortOrder != products[j].SortOrder {
			return products[i].SortOrder < products[j].SortOrder
		}
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})
}
