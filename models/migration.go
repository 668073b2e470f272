package models

import (
	"github.com/mmdatafocus/insights_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&InsightBundleRecord{},
		&InsightSummaryRecord{},
	)
	if err != nil {
		panic(err)
	}
}
