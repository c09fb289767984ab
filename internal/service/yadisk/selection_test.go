package yadisk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSelectEntries tests picking entries by path or name.
func TestSelectEntries(t *testing.T) {
	t.Parallel()

	listing := &ListingResult{Entries: []ResourceEntry{
		fileEntry("/docs/report.pdf", 10),
		fileEntry("/docs/notes.txt", 5),
		{Name: "scans", Path: "/docs/scans", Type: EntryTypeFolder},
	}}

	tests := []struct {
		name              string
		ids               []string
		expectedPaths     []string
		expectedUnmatched []string
	}{
		{
			name:          "by name",
			ids:           []string{"report.pdf"},
			expectedPaths: []string{"/docs/report.pdf"},
		},
		{
			name:          "by path keeps order of ids",
			ids:           []string{"/docs/notes.txt", "/docs/report.pdf"},
			expectedPaths: []string{"/docs/notes.txt", "/docs/report.pdf"},
		},
		{
			name:          "path without leading slash",
			ids:           []string{"docs/notes.txt"},
			expectedPaths: []string{"/docs/notes.txt"},
		},
		{
			name:          "duplicates selected once",
			ids:           []string{"report.pdf", "/docs/report.pdf", " report.pdf "},
			expectedPaths: []string{"/docs/report.pdf"},
		},
		{
			name:              "unknown ids reported",
			ids:               []string{"missing.bin", "", "scans"},
			expectedPaths:     []string{"/docs/scans"},
			expectedUnmatched: []string{"missing.bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			selected, unmatched := SelectEntries(listing, tt.ids)

			paths := make([]string, 0, len(selected))
			for i := range selected {
				paths = append(paths, selected[i].Path)
			}

			assert.Equal(t, tt.expectedPaths, paths)
			assert.Equal(t, tt.expectedUnmatched, unmatched)
		})
	}
}

// TestSelectEntries_NilListing tests that nothing matches without a listing.
func TestSelectEntries_NilListing(t *testing.T) {
	t.Parallel()

	selected, unmatched := SelectEntries(nil, []string{"a", "b"})

	assert.Empty(t, selected)
	assert.Equal(t, []string{"a", "b"}, unmatched)
}
