package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Destination struct {
	ID           int64     `db:"id" json:"id"`
	NameEn       string    `db:"name_en" json:"nameEn"`
	NameKo       string    `db:"name_ko" json:"nameKo"`
	Introduction string    `db:"introduction" json:"introduction"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	Images       ImageList `db:"image" json:"image"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Computed fields (not in database)
	IntroductionHTML string `db:"-" json:"introductionHtml,omitempty"`
}

// ImageList is the ordered set of public image URLs owned by a destination.
// It is always written as a JSON array; see DecodeImages for what is accepted on read.
type ImageList []string

// DecodeImages parses a stored image column value.
// Accepted shapes: a JSON array of URLs, a comma-joined list of URLs,
// or a single bare URL. Empty input yields an empty list.
func DecodeImages(raw string) ImageList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageList{}
	}

	if strings.HasPrefix(raw, "[") {
		var urls []string
		err := json.Unmarshal([]byte(raw), &urls)
		if err == nil {
			return compact(urls)
		}
	}

	// URLs are built from percent-encoded filenames, so a literal comma only separates entries
	if strings.Contains(raw, ",") {
		return compact(strings.Split(raw, ","))
	}

	return ImageList{raw}
}

// Encode returns the canonical JSON form
func (l ImageList) Encode() string {
	if len(l) == 0 {
		return "[]"
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		// []string always marshals
		panic(err)
	}
	return string(b)
}

func (l ImageList) Value() (driver.Value, error) {
	return l.Encode(), nil
}

func (l *ImageList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = ImageList{}
	case string:
		*l = DecodeImages(v)
	case []byte:
		*l = DecodeImages(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
	return nil
}

func compact(urls []string) ImageList {
	out := ImageList{}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
