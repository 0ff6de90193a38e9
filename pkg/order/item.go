package order

// OrderItem is a line item. It has no lifecycle outside its order.
type OrderItem struct {
	ID        string  `json:"id" bson:"id"`
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
	Comment   string  `json:"comment,omitempty" bson:"comment,omitempty"`
}
