package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredRecordConcatenatedValues(t *testing.T) {
	t.Run("Joins and lowercases all field values", func(t *testing.T) {
		record := StructuredRecord{
			"Request #": "4521",
			"Vendor":    "PT. Maju Jaya",
		}

		joined := record.ConcatenatedValues()

		assert.Contains(t, joined, "4521", "Expected the request number in the joined values")
		assert.Contains(t, joined, "pt. maju jaya", "Expected vendor name to be lowercased")
	})
}

func TestStructuredRecordHasFieldValue(t *testing.T) {
	record := StructuredRecord{"Request #": " 4521 ", "Status": "Approved"}

	t.Run("Exact value matches regardless of case and padding", func(t *testing.T) {
		assert.True(t, record.HasFieldValue("4521"), "Expected trimmed exact match on the identifier")
		assert.True(t, record.HasFieldValue("approved"), "Expected case-insensitive exact match")
	})

	t.Run("Substring does not match", func(t *testing.T) {
		assert.False(t, record.HasFieldValue("452"), "Expected partial identifier to not match")
	})
}

func TestStructuredRecordFormat(t *testing.T) {
	t.Run("Skips empty fields and keeps stable order", func(t *testing.T) {
		record := StructuredRecord{
			"Vendor":    "PT. ABC",
			"Notes":     "",
			"Request #": "17",
		}

		formatted := record.Format()

		assert.Equal(t, "Request #: 17\nVendor: PT. ABC", formatted,
			"Expected sorted non-empty fields as colon-separated lines")
	})
}
