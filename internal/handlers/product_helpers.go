package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fastkart/internal/models"
)

// normalizeProductDocument tolerates legacy document shapes: single-string
// category/images fields and numeric price fields stored as integers.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}
	if img, ok := raw["images"].(string); ok {
		raw["images"] = []string{img}
	}

	for _, key := range []string{"basePrice", "offerPrice"} {
		switch typed := raw[key].(type) {
		case int32:
			raw[key] = float64(typed)
		case int64:
			raw[key] = float64(typed)
		case int:
			raw[key] = float64(typed)
		}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.IsOnSale = p.OnSale()

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
