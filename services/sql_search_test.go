package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSQL(t *testing.T) {
	valid := "SELECT * FROM unit_search_sorting WHERE room = 3 AND lang_id = 1 LIMIT 5"
	assert.NoError(t, ValidateSQL(valid))
	assert.NoError(t, ValidateSQL(valid+";"))

	tests := []struct {
		name string
		sql  string
	}{
		{"empty", ""},
		{"not a select", "UPDATE unit_search_sorting SET price = 0 LIMIT 5"},
		{"forbidden keyword", "SELECT * FROM unit_search_sorting WHERE 1=1; DROP TABLE promo; -- LIMIT 5"},
		{"wrong table", "SELECT * FROM users WHERE id = 1 LIMIT 5"},
		{"missing limit", "SELECT * FROM unit_search_sorting WHERE room = 3"},
		{"stacked statements", "SELECT * FROM unit_search_sorting LIMIT 5; SELECT * FROM unit_search_sorting LIMIT 5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateSQL(tc.sql))
		})
	}
}

func TestFilterUnavailableRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"unit_id": "1", "status_text": "Available"},
		{"unit_id": "2", "status_text": "Reserved"},
		{"unit_id": "3", "status_text": "SOLD OUT"},
		{"unit_id": "4", "status_text": "محجوزة"},
		{"unit_id": "5", "status_text": nil},
		{"unit_id": "6", "status_text": "متاحة"},
	}

	filtered := FilterUnavailableRows(rows)
	ids := make([]string, 0, len(filtered))
	for _, r := range filtered {
		ids = append(ids, rowString(r, "unit_id"))
	}
	assert.Equal(t, []string{"1", "5", "6"}, ids)
}

func TestLangID(t *testing.T) {
	assert.Equal(t, 1, LangID("en"))
	assert.Equal(t, 2, LangID("ar"))
	assert.Equal(t, 2, LangID("franco"))
	assert.Equal(t, 1, LangID("unknown"))
}

func TestDiffWhereClauses(t *testing.T) {
	original := "SELECT * FROM unit_search_sorting WHERE room = 3 AND lang_id = 1 AND LOWER(status_text) NOT LIKE '%reserved%' LIMIT 5"
	fuzzy := "SELECT * FROM unit_search_sorting WHERE room = 2 AND lang_id = 1 AND LOWER(status_text) NOT LIKE '%reserved%' LIMIT 5"

	field, value := diffWhereClauses(original, fuzzy)
	assert.Equal(t, "room", field)
	assert.Equal(t, "3", value)
}

func TestDiffWhereClausesDroppedCondition(t *testing.T) {
	original := "SELECT * FROM unit_search_sorting WHERE room = 3 AND finishing = 'Fully Finished' AND lang_id = 1 LIMIT 5"
	fuzzy := "SELECT * FROM unit_search_sorting WHERE room = 3 AND lang_id = 1 LIMIT 5"

	field, value := diffWhereClauses(original, fuzzy)
	assert.Equal(t, "finishing", field)
	assert.Equal(t, "Fully Finished", value)
}

func TestDiffWhereClausesIdentical(t *testing.T) {
	sql := "SELECT * FROM unit_search_sorting WHERE room = 3 AND lang_id = 1 LIMIT 5"
	field, value := diffWhereClauses(sql, sql)
	assert.Empty(t, field)
	assert.Empty(t, value)
}

func TestRowString(t *testing.T) {
	row := map[string]interface{}{"a": "x", "b": nil, "c": 7}
	assert.Equal(t, "x", rowString(row, "a"))
	assert.Equal(t, "", rowString(row, "b"))
	assert.Equal(t, "7", rowString(row, "c"))
	assert.Equal(t, "", rowString(row, "missing"))
}
