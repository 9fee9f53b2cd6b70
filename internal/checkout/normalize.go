package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fastkart/internal/models"
)

const placeholderImage = "/placeholder.svg"

// LineItem is a normalized, priced checkout line. Line prices are unit
// prices multiplied by the (coerced) quantity. Both unit prices are
// non-negative; nothing here enforces offer <= base, pricing is trusted
// upstream.
type LineItem struct {
	Kind           SourceItemKind
	ProductID      *primitive.ObjectID
	Quantity       int
	UnitBasePrice  float64
	UnitOfferPrice float64
	LineBasePrice  float64
	LineOfferPrice float64
	Color          string
	Custom         *models.CustomProductSnapshot
}

// SourceItemKind tags a line item as catalog-priced or caller-priced.
type SourceItemKind int

const (
	ItemCatalog SourceItemKind = iota
	ItemCustom
)

// coerceQuantity treats a stored zero (or negative) quantity as
// "unspecified" and charges for one unit. A line item never multiplies to a
// zero amount because of its quantity.
func coerceQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}

func newLineItem(kind SourceItemKind, productID *primitive.ObjectID, quantity int, unitBase, unitOffer float64, color string, custom *models.CustomProductSnapshot) LineItem {
	qty := coerceQuantity(quantity)
	return LineItem{
		Kind:           kind,
		ProductID:      productID,
		Quantity:       qty,
		UnitBasePrice:  unitBase,
		UnitOfferPrice: unitOffer,
		LineBasePrice:  unitBase * float64(qty),
		LineOfferPrice: unitOffer * float64(qty),
		Color:          color,
		Custom:         custom,
	}
}

// normalizeIntent maps a direct-checkout intent to a single line item.
// Catalog intents are priced from the catalog at normalization time, never
// from prices embedded in the token.
func (s *Service) normalizeIntent(ctx context.Context, intent *models.CheckoutIntent) (LineItem, error) {
	if intent.IsCustomProduct {
		custom := intent.CustomProduct
		if custom == nil {
			custom = &models.CustomProductSnapshot{
				Title:   intent.Title,
				Image:   intent.Image,
				Options: map[string]string{},
			}
			if custom.Title == "" {
				custom.Title = "Custom Product"
			}
			if custom.Image == "" {
				custom.Image = placeholderImage
			}
		}
		return newLineItem(ItemCustom, nil, intent.Quantity, intent.BasePrice, intent.OfferPrice, "", custom), nil
	}

	productID, err := primitive.ObjectIDFromHex(intent.ProductID)
	if err != nil {
		return LineItem{}, ProductNotFoundError{ProductID: intent.ProductID}
	}

	product, err := s.Catalog.ProductWithImages(ctx, productID)
	if err != nil {
		return LineItem{}, err
	}
	if product == nil {
		return LineItem{}, ProductNotFoundError{ProductID: intent.ProductID}
	}

	return newLineItem(ItemCatalog, &product.ID, intent.Quantity, product.BasePrice, product.EffectiveOfferPrice(), intent.Color, nil), nil
}

// normalizeCartItems maps cart items to line items, preserving order and
// performing no merging. Custom items price from their snapshot, catalog
// items from the live catalog.
func (s *Service) normalizeCartItems(ctx context.Context, cartItems []models.CartItem) ([]LineItem, error) {
	items := make([]LineItem, 0, len(cartItems))

	for _, ci := range cartItems {
		if ci.CustomProduct != nil {
			items = append(items, newLineItem(ItemCustom, nil, ci.Quantity, ci.CustomProduct.BasePrice, ci.CustomProduct.OfferPrice, "", ci.CustomProduct))
			continue
		}

		if ci.ProductID == nil {
			return nil, ProductNotFoundError{ProductID: ci.ID}
		}

		product, err := s.Catalog.ProductWithImages(ctx, *ci.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ProductNotFoundError{ProductID: ci.ProductID.Hex()}
		}

		items = append(items, newLineItem(ItemCatalog, &product.ID, ci.Quantity, product.BasePrice, product.EffectiveOfferPrice(), ci.Color, nil))
	}

	return items, nil
}

// orderTotal sums the line offer prices. No rounding happens here; the
// total stays exact until it is converted for the gateway.
func orderTotal(items []LineItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.LineOfferPrice
	}
	return total
}

// gatewayAmount converts an order total to the smallest currency unit,
// rounding exactly once.
func gatewayAmount(total float64) int64 {
	return int64(math.Round(total * 100))
}

// deriveOrderCode turns a gateway order id of the form "<prefix>_<code>"
// into the human-facing order code. A malformed id violates the gateway
// contract and is an internal fault, not a user error.
func deriveOrderCode(gatewayOrderID string) (string, error) {
	parts := strings.Split(gatewayOrderID, "_")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("gateway order id %q: missing separator segment", gatewayOrderID)
	}
	return strings.ToUpper(parts[1]), nil
}

func orderItemsFromLines(items []LineItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.OrderItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Color:         it.Color,
			BasePrice:     it.LineBasePrice,
			OfferPrice:    it.LineOfferPrice,
			CustomProduct: it.Custom,
		})
	}
	return out
}
