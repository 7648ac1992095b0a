package models

import "encoding/json"

// Link is one entry of a profile's link list. It lives inside the serialized
// 'data' blob of the profiles table, not in its own relation.
type Link struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Clicks int64  `json:"clicks"`
}

// Profile représente un profil public dans la base de données.
type Profile struct {
	ID            string `gorm:"primaryKey;size:16"`
	EditToken     string `gorm:"column:edit_token;size:32;not null"`
	Name          string
	Bio           string
	Photo         string
	Data          string  // JSON blob: {"links":[...]}
	Theme         string  `gorm:"default:dark"`
	BgColor       string  `gorm:"column:bgColor;default:#1a1a1a"`
	ButtonColor   string  `gorm:"column:buttonColor;default:#3b82f6"`
	Template      string  `gorm:"default:minimal"`
	Slug          *string `gorm:"uniqueIndex;size:30"`
	Views         int64   `gorm:"default:0"`
	Customization string
	CreatedAt     int64 `gorm:"column:created_at;autoCreateTime:milli"`
}

// TableName keeps the historical table name regardless of GORM pluralization rules.
func (Profile) TableName() string {
	return "profiles"
}

// linksDocument is the envelope stored in the 'data' column.
// The links array is serialized under a "links" key.
type linksDocument struct {
	Links []Link `json:"links"`
}

// EncodeLinks serializes a link list into the data-blob format.
func EncodeLinks(links []Link) (string, error) {
	if links == nil {
		links = []Link{}
	}
	raw, err := json.Marshal(linksDocument{Links: links})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeLinks parses a data blob back into a link list.
// Malformed or empty blobs decode to an empty list rather than an error,
// so a corrupted row never breaks profile reads.
func DecodeLinks(data string) []Link {
	if data == "" {
		return []Link{}
	}
	var doc linksDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return []Link{}
	}
	if doc.Links == nil {
		return []Link{}
	}
	return doc.Links
}

// DecodeCustomization returns the stored customization blob as raw JSON,
// falling back to an empty object when the blob is missing or malformed.
func DecodeCustomization(customization string) json.RawMessage {
	if customization == "" || !json.Valid([]byte(customization)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(customization)
}
