package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeLinks(t *testing.T) {
	links := []Link{
		{Title: "Blog", URL: "https://a.example"},
		{Title: "Shop", URL: "https://b.example", Clicks: 3},
	}

	data, err := EncodeLinks(links)
	require.NoError(t, err)
	assert.JSONEq(t, `{"links":[{"title":"Blog","url":"https://a.example","clicks":0},{"title":"Shop","url":"https://b.example","clicks":3}]}`, data)

	decoded := DecodeLinks(data)
	assert.Equal(t, links, decoded)
}

func TestEncodeLinksNil(t *testing.T) {
	data, err := EncodeLinks(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"links":[]}`, data)
}

func TestDecodeLinksTolerance(t *testing.T) {
	// Malformed or missing blobs must decode to an empty list, never an error
	tests := []struct {
		name string
		data string
	}{
		{"empty blob", ""},
		{"truncated json", `{"links":[{"title":`},
		{"not json at all", "garbage"},
		{"null links key", `{"links":null}`},
		{"missing links key", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []Link{}, DecodeLinks(tt.data))
		})
	}
}

func TestDecodeCustomization(t *testing.T) {
	assert.Equal(t, "{}", string(DecodeCustomization("")))
	assert.Equal(t, "{}", string(DecodeCustomization("{broken")))
	assert.Equal(t, `{"font":"mono"}`, string(DecodeCustomization(`{"font":"mono"}`)))
}
