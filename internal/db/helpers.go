package db

import (
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// recordID builds a typed SurrealDB record ID for query parameters.
func recordID(table, id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(table, id)
}
