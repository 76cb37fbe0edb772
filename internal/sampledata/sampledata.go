// Package sampledata generates demo records matching a schema, used by the
// CLI store command when no input file is given.
package sampledata

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/recstore/recstore/recstore"
)

// Generate produces n records for the schema. Integer fields get sequential
// values starting at startID so the default order field is unique; string
// fields get short uuid-derived tokens.
func Generate(schema recstore.Schema, n int, startID int64) []recstore.Record {
	rows := make([]recstore.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := make(recstore.Record, schema.Len())
		for _, f := range schema.Fields() {
			switch f.Kind {
			case recstore.FormatInteger, recstore.FormatIntegerIndexed:
				rec[f.Name] = startID + int64(i)
			case recstore.FormatFloat:
				rec[f.Name] = rand.Float64() * 100
			case recstore.FormatBool:
				rec[f.Name] = i%2 == 0
			default:
				rec[f.Name] = uuid.NewString()[:8]
			}
		}
		rows = append(rows, rec)
	}
	return rows
}
