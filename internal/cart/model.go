package cart

// Line is one (user, product) entry in a cart. Repeated additions merge
// into a single line by incrementing the quantity.
type Line struct {
	UserID    string `json:"userId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}
