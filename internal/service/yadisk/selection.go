package yadisk

import (
	"strings"
)

// SelectEntries picks the entries of listing named by ids.
// An id matches an entry path first, then an entry name. Selected entries follow the order of ids,
// each entry at most once; ids that match nothing are returned separately.
func SelectEntries(listing *ListingResult, ids []string) (selected []ResourceEntry, unmatched []string) {
	if listing == nil {
		return nil, append([]string(nil), ids...)
	}

	byPath := make(map[string]int, len(listing.Entries))
	byName := make(map[string]int, len(listing.Entries))

	for i := range listing.Entries {
		byPath[listing.Entries[i].Path] = i

		// The first entry with a given name wins, names are unique inside one folder anyway.
		if _, ok := byName[listing.Entries[i].Name]; !ok {
			byName[listing.Entries[i].Name] = i
		}
	}

	taken := make(map[int]struct{}, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		var (
			index int
			ok    bool
		)

		if strings.HasPrefix(id, rootPath) {
			index, ok = byPath[normalizePath(id)]
		}

		if !ok {
			index, ok = byName[id]
		}

		if !ok {
			// A path given without the leading slash still identifies the entry.
			index, ok = byPath[normalizePath(id)]
		}

		if !ok {
			unmatched = append(unmatched, id)

			continue
		}

		if _, ok = taken[index]; ok {
			continue
		}

		taken[index] = struct{}{}
		selected = append(selected, listing.Entries[index])
	}

	return selected, unmatched
}
