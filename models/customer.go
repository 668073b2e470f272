package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Id               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone"`
	OrdersCount      int             `json:"orders_count"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	Tags             []string        `json:"tags"`
	AcceptsMarketing bool            `json:"accepts_marketing"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	LastOrderAt      *time.Time      `json:"last_order_at"`
}
