package yadisk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// FileCategory is a coarse file class used for filtering and display.
type FileCategory string

const (
	// FileCategoryFolder is any folder.
	FileCategoryFolder FileCategory = "folder"
	// FileCategoryImage covers pictures.
	FileCategoryImage FileCategory = "image"
	// FileCategoryVideo covers movies and clips.
	FileCategoryVideo FileCategory = "video"
	// FileCategoryAudio covers music and recordings.
	FileCategoryAudio FileCategory = "audio"
	// FileCategoryDocument covers PDFs, word processor files and books.
	FileCategoryDocument FileCategory = "document"
	// FileCategorySpreadsheet covers tables.
	FileCategorySpreadsheet FileCategory = "spreadsheet"
	// FileCategoryPresentation covers slides.
	FileCategoryPresentation FileCategory = "presentation"
	// FileCategoryArchive covers compressed files and disk images.
	FileCategoryArchive FileCategory = "archive"
	// FileCategoryText covers plain text, source code and markup.
	FileCategoryText FileCategory = "text"
	// FileCategoryOther is everything else.
	FileCategoryOther FileCategory = "other"
)

// ErrUnknownFileCategory indicates a category name outside the known set.
var ErrUnknownFileCategory = errors.New("unknown file category")

//nolint:gochecknoglobals // Immutable lookup tables.
var (
	allFileCategories = []FileCategory{
		FileCategoryFolder,
		FileCategoryImage,
		FileCategoryVideo,
		FileCategoryAudio,
		FileCategoryDocument,
		FileCategorySpreadsheet,
		FileCategoryPresentation,
		FileCategoryArchive,
		FileCategoryText,
		FileCategoryOther,
	}

	// categoriesByMimeType lists exact MIME types that the prefix rules below would get wrong.
	categoriesByMimeType = map[string]FileCategory{
		// Documents.
		"application/pdf":                                                         FileCategoryDocument,
		"application/msword":                                                      FileCategoryDocument,
		"application/rtf":                                                         FileCategoryDocument,
		"application/epub+zip":                                                    FileCategoryDocument,
		"application/vnd.oasis.opendocument.text":                                 FileCategoryDocument,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FileCategoryDocument,

		// Spreadsheets.
		"text/csv":                                                          FileCategorySpreadsheet,
		"application/vnd.ms-excel":                                          FileCategorySpreadsheet,
		"application/vnd.oasis.opendocument.spreadsheet":                    FileCategorySpreadsheet,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileCategorySpreadsheet,

		// Presentations.
		"application/vnd.ms-powerpoint":                                             FileCategoryPresentation,
		"application/vnd.oasis.opendocument.presentation":                           FileCategoryPresentation,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": FileCategoryPresentation,

		// Archives and disk images.
		"application/zip":              FileCategoryArchive,
		"application/x-zip-compressed": FileCategoryArchive,
		"application/x-7z-compressed":  FileCategoryArchive,
		"application/x-rar":            FileCategoryArchive,
		"application/vnd.rar":          FileCategoryArchive,
		"application/x-rar-compressed": FileCategoryArchive,
		"application/gzip":             FileCategoryArchive,
		"application/x-gzip":           FileCategoryArchive,
		"application/x-tar":            FileCategoryArchive,
		"application/x-bzip2":          FileCategoryArchive,
		"application/x-xz":             FileCategoryArchive,
		"application/x-iso9660-image":  FileCategoryArchive,

		// Structured text.
		"application/json":       FileCategoryText,
		"application/xml":        FileCategoryText,
		"application/javascript": FileCategoryText,
		"application/x-yaml":     FileCategoryText,
	}

	// categoriesByMimePrefix maps the top-level MIME type.
	categoriesByMimePrefix = map[string]FileCategory{
		"image": FileCategoryImage,
		"video": FileCategoryVideo,
		"audio": FileCategoryAudio,
		"text":  FileCategoryText,
	}

	// categoriesByMediaType maps the media_type values of Yandex Disk.
	categoriesByMediaType = map[string]FileCategory{
		"image":       FileCategoryImage,
		"video":       FileCategoryVideo,
		"audio":       FileCategoryAudio,
		"document":    FileCategoryDocument,
		"book":        FileCategoryDocument,
		"spreadsheet": FileCategorySpreadsheet,
		"compressed":  FileCategoryArchive,
		"diskimage":   FileCategoryArchive,
		"backup":      FileCategoryArchive,
		"text":        FileCategoryText,
		"development": FileCategoryText,
		"web":         FileCategoryText,
	}
)

// AllFileCategories returns every category in display order.
func AllFileCategories() []FileCategory {
	return append([]FileCategory(nil), allFileCategories...)
}

// ParseFileCategory parses a category name, ignoring case and surrounding spaces.
func ParseFileCategory(value string) (FileCategory, error) {
	normalized := FileCategory(strings.ToLower(strings.TrimSpace(value)))

	for _, category := range allFileCategories {
		if category == normalized {
			return category, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFileCategory, value)
}

// CategoryOf derives the category of an entry.
// The MIME type decides first, the Yandex Disk media type is the fallback.
func CategoryOf(entryType EntryType, mimeType, mediaType string) FileCategory {
	if entryType == EntryTypeFolder {
		return FileCategoryFolder
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if semicolon := strings.IndexByte(mimeType, ';'); semicolon != -1 {
		mimeType = strings.TrimSpace(mimeType[:semicolon])
	}

	if category, ok := categoriesByMimeType[mimeType]; ok {
		return category
	}

	if slash := strings.IndexByte(mimeType, '/'); slash != -1 {
		if category, ok := categoriesByMimePrefix[mimeType[:slash]]; ok {
			return category
		}
	}

	if category, ok := categoriesByMediaType[strings.ToLower(mediaType)]; ok {
		return category
	}

	return FileCategoryOther
}

// FilterByCategory returns the entries that belong to any of the given categories.
// Without categories every entry is returned.
func FilterByCategory(entries []ResourceEntry, categories ...FileCategory) []ResourceEntry {
	if len(categories) == 0 {
		return append([]ResourceEntry(nil), entries...)
	}

	wanted := make(map[FileCategory]struct{}, len(categories))
	for _, category := range categories {
		wanted[category] = struct{}{}
	}

	return utils.Filter(entries, func(entry ResourceEntry) bool {
		_, ok := wanted[entry.Category()]

		return ok
	})
}
