package models

// CustomProductSnapshot captures a fully caller-specified product at
// checkout time: its price, display fields and configured options. It is
// stored verbatim on cart items and order items.
type CustomProductSnapshot struct {
	Title      string            `bson:"title" json:"title"`
	Image      string            `bson:"image" json:"image"`
	BasePrice  float64           `bson:"basePrice" json:"basePrice"`
	OfferPrice float64           `bson:"offerPrice" json:"offerPrice"`
	Options    map[string]string `bson:"options" json:"options"`
}

// CheckoutIntent is the version-1 payload of the signed "checkout" cookie:
// a transient "buy now" description consumed exactly once by the payment
// pipeline. Catalog intents reference a product id; custom intents carry
// their own prices and an optional snapshot.
type CheckoutIntent struct {
	Version         int                    `json:"v" validate:"eq=1"`
	IsCustomProduct bool                   `json:"isCustomProduct"`
	ProductID       string                 `json:"productId,omitempty" validate:"required_if=IsCustomProduct false"`
	Quantity        int                    `json:"quantity" validate:"gte=0"`
	Color           string                 `json:"color,omitempty"`
	BasePrice       float64                `json:"basePrice,omitempty" validate:"gte=0"`
	OfferPrice      float64                `json:"offerPrice,omitempty" validate:"gte=0"`
	Title           string                 `json:"title,omitempty"`
	Image           string                 `json:"image,omitempty"`
	CustomProduct   *CustomProductSnapshot `json:"customProductData,omitempty"`
}
