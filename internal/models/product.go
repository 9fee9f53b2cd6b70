package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug        string             `bson:"slug" json:"slug"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	BasePrice   float64            `bson:"basePrice" json:"basePrice"`
	OfferPrice  float64            `bson:"offerPrice" json:"offerPrice"`
	Images      StringList         `bson:"images" json:"images"`
	Colors      StringList         `bson:"colors" json:"colors"`
	Category    StringList         `bson:"category" json:"category"`
	IsOnSale    bool               `bson:"-" json:"isOnSale"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// EffectiveOfferPrice is the price a buyer pays right now. An unset offer
// price (or one at/above the base price) falls back to the base price.
func (p Product) EffectiveOfferPrice() float64 {
	if p.OnSale() {
		return p.OfferPrice
	}
	return p.BasePrice
}

func (p Product) OnSale() bool {
	return p.OfferPrice > 0 && p.OfferPrice < p.BasePrice
}
