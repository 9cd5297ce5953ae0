// Package rowmap converts database rows with snake_case column names into
// records keyed the way the JSON API names fields (camelCase).
package rowmap

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CamelKey converts a snake_case column name to camelCase.
// "name_en" -> "nameEn", "created_at" -> "createdAt", "id" -> "id".
// Empty segments from leading, trailing or repeated underscores are dropped.
func CamelKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}

	// Casers are stateful, so one per call
	caser := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	first := true
	for _, part := range strings.Split(key, "_") {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		b.WriteString(caser.String(part))
	}
	return b.String()
}

// ToCamel returns a copy of record with every key converted by CamelKey.
// Values are preserved, except driver byte slices which become strings.
// If two keys collide after conversion, the one already in camelCase wins.
func ToCamel(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for key, value := range record {
		camel := CamelKey(key)
		if _, taken := out[camel]; taken && camel != key {
			continue
		}
		out[camel] = normalize(value)
	}
	return out
}

// Scan reads every remaining row from rows and returns them as camelCase records.
// rows is closed before returning.
func Scan(rows *sqlx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	records := []map[string]any{}
	for rows.Next() {
		record := make(map[string]any)
		err := rows.MapScan(record)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, ToCamel(record))
	}

	err := rows.Err()
	if err != nil {
		return nil, err
	}

	return records, nil
}

func normalize(value any) any {
	b, ok := value.([]byte)
	if ok {
		return string(b)
	}
	return value
}
