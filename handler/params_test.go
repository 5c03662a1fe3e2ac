package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit values", "limit=50&offset=10", 50, 10},
		{"limit above cap falls back to default", "limit=500", 20, 0},
		{"zero limit falls back to default", "limit=0", 20, 0},
		{"negative offset ignored", "offset=-5", 20, 0},
		{"non-numeric ignored", "limit=abc&offset=xyz", 20, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/projects?"+tc.query, nil)
			limit, offset := parsePagination(req)
			assert.Equal(t, tc.expectedLimit, limit)
			assert.Equal(t, tc.expectedOffset, offset)
		})
	}
}

func TestParseSort(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/projects", nil)
		sort, order := parseSort(req, "created_at", "name")
		assert.Equal(t, "created_at", sort)
		assert.Equal(t, "desc", order)
	})

	t.Run("whitelisted column", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/projects?sort=name&order=asc", nil)
		sort, order := parseSort(req, "created_at", "name")
		assert.Equal(t, "name", sort)
		assert.Equal(t, "asc", order)
	})

	t.Run("unknown column falls back", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/projects?sort=password_hash;drop+table", nil)
		sort, order := parseSort(req, "created_at", "name")
		assert.Equal(t, "created_at", sort)
		assert.Equal(t, "desc", order)
	})

	t.Run("unknown order falls back to desc", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/projects?order=sideways", nil)
		_, order := parseSort(req, "created_at")
		assert.Equal(t, "desc", order)
	})
}
