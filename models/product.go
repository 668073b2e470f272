package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Tags        []string  `json:"tags"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variant back-references its parent product; the product owns the sequence.
type Variant struct {
	Id                string          `json:"id"`
	ProductId         string          `json:"product_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Sku               string          `json:"sku"`
	InventoryQuantity int             `json:"inventory_quantity"`
	Weight            decimal.Decimal `json:"weight"`
	WeightUnit        string          `json:"weight_unit"`
}

type Image struct {
	Id  string `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}
