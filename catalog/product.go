// Package catalog is the product collection served by sieve: the Product
// record, its storage schema and the filter registries that whitelist how
// clients may narrow it.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/asaidimu/go-sieve/core/schema"
	"github.com/asaidimu/go-sieve/sqlite"
	"github.com/asaidimu/go-sieve/utils"
	"github.com/google/uuid"
)

// Product statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// TimeLayout is how created_at is stored: fixed width UTC with milliseconds, so
// string order is chronological.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Product is a single catalog entry.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProduct creates a product with a random id.
func NewProduct(name, status, location string, price float64) Product {
	return Product{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    status,
		Location:  location,
		Price:     price,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// ToDocument converts p into a storable document.
func ToDocument(p Product) (schema.Document, error) {
	m, err := utils.StructToMap(p)
	if err != nil {
		return nil, fmt.Errorf("failed to convert product %s: %w", p.ID, err)
	}
	m["created_at"] = p.CreatedAt.UTC().Format(TimeLayout)
	return m, nil
}

// FromDocument converts a stored document back into a Product.
func FromDocument(doc schema.Document) (Product, error) {
	return utils.MapToStruct[Product](doc)
}

// Schema describes how products are stored.
func Schema() *schema.SchemaDefinition {
	return &schema.SchemaDefinition{
		Name:        "products",
		Version:     "1.0.0",
		Description: schema.StringPtr("Products offered in the catalog"),
		Fields: map[string]*schema.FieldDefinition{
			"id":   {Name: "id", Type: schema.FieldTypeString, Required: schema.BoolPtr(true)},
			"name": {Name: "name", Type: schema.FieldTypeString, Required: schema.BoolPtr(true)},
			"status": {
				Name:     "status",
				Type:     schema.FieldTypeEnum,
				Required: schema.BoolPtr(true),
				Values:   []any{StatusActive, StatusInactive, StatusArchived},
				Default:  StatusActive,
			},
			"location":   {Name: "location", Type: schema.FieldTypeString},
			"price":      {Name: "price", Type: schema.FieldTypeNumber, Default: 0},
			"created_at": {Name: "created_at", Type: schema.FieldTypeString, Description: schema.StringPtr("UTC creation time with millisecond precision")},
		},
		Indexes: []schema.IndexDefinition{
			{Name: "pk_products", Fields: []string{"id"}, Type: schema.IndexTypePrimary},
			{Name: "idx_products_status", Fields: []string{"status"}, Type: schema.IndexTypeNormal},
			{Name: "idx_products_location", Fields: []string{"location"}, Type: schema.IndexTypeNormal},
		},
	}
}

var sampleNamespace = uuid.MustParse("4b1f7a52-8a5c-4f0e-9d43-6f1e2a0c9b7d")

// SampleProducts returns a fixed set of products. Ids are derived from the
// product names, so they are the same on every call.
func SampleProducts() []Product {
	base := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	rows := []struct {
		name, status, location string
		price                  float64
	}{
		{"Alpine Jacket", StatusActive, "Nairobi", 120.0},
		{"Alpine Boots", StatusActive, "Mombasa", 95.5},
		{"Canvas Tote", StatusInactive, "Nairobi", 18.0},
		{"Cedar Desk", StatusActive, "Kisumu", 340.0},
		{"Copper Mug", StatusArchived, "Nairobi", 12.5},
		{"Linen Shirt", StatusActive, "Nairobi", 45.0},
		{"Oak Chair", StatusInactive, "Mombasa", 150.0},
		{"Wool Scarf", StatusActive, "Kisumu", 30.0},
	}

	products := make([]Product, len(rows))
	for i, r := range rows {
		products[i] = Product{
			ID:        uuid.NewSHA1(sampleNamespace, []byte(r.name)).String(),
			Name:      r.name,
			Status:    r.status,
			Location:  r.location,
			Price:     r.price,
			CreatedAt: base.AddDate(0, 0, i),
		}
	}
	return products
}

// Seed inserts products into store unless it already holds data. It returns
// the number of rows inserted.
func Seed(ctx context.Context, store *sqlite.Store, products []Product) (int64, error) {
	count, err := store.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	docs := make([]schema.Document, 0, len(products))
	for _, p := range products {
		doc, err := ToDocument(p)
		if err != nil {
			return 0, err
		}
		docs = append(docs, doc)
	}
	return store.Insert(ctx, docs...)
}
