package insights

import (
	"sort"

	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
)

// ClassifyInventory flags every variant against the configured thresholds.
// Both alert lists are capped and ordered by ascending stock (most urgent
// first); ties break by variant id for determinism.
func ClassifyInventory(products []*models.Product, tuning config.InsightTuning) models.InventoryAlerts {
	var lowStock, outOfStock []models.StockAlert

	for _, product := range products {
		for _, variant := range product.Variants {
			alert := models.StockAlert{
				ProductId:         product.Id,
				VariantId:         variant.Id,
				Title:             alertTitle(product.Title, variant.Title),
				Sku:               variant.Sku,
				InventoryQuantity: variant.InventoryQuantity,
				ProjectedDaysLeft: projectedDaysLeft(variant.InventoryQuantity, tuning.AssumedDailyVelocity),
			}
			switch {
			case variant.InventoryQuantity == 0:
				outOfStock = append(outOfStock, alert)
			case variant.InventoryQuantity < tuning.LowStockThreshold:
				lowStock = append(lowStock, alert)
			}
		}
	}

	sortAlerts(lowStock)
	sortAlerts(outOfStock)

	return models.InventoryAlerts{
		LowStock:          capAlerts(lowStock, tuning.AlertCap),
		OutOfStock:        capAlerts(outOfStock, tuning.AlertCap),
		LowStockThreshold: tuning.LowStockThreshold,
	}
}

// projectedDaysLeft divides stock by an assumed sell-through velocity. It is
// a coarse estimate for triage, not a demand forecast.
func projectedDaysLeft(quantity int, dailyVelocity float64) float64 {
	if dailyVelocity <= 0 {
		return 0
	}
	return float64(quantity) / dailyVelocity
}

func alertTitle(productTitle, variantTitle string) string {
	if variantTitle == "" || variantTitle == "Default Title" {
		return productTitle
	}
	return productTitle + " - " + variantTitle
}

func sortAlerts(alerts []models.StockAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].InventoryQuantity != alerts[j].InventoryQuantity {
			return alerts[i].InventoryQuantity < alerts[j].InventoryQuantity
		}
		return alerts[i].VariantId < alerts[j].VariantId
	})
}

func capAlerts(alerts []models.StockAlert, limit int) []models.StockAlert {
	if len(alerts) > limit {
		return alerts[:limit]
	}
	return alerts
}
