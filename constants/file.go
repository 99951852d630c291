package constants

import "strings"

// Source formats for text acquisition.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a source format, or "".
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	}
	return ""
}

// ExportFormat selects a downstream accounting-software row layout.
type ExportFormat string

const (
	FormatGeneric     ExportFormat = "generic"
	FormatGenericXLSX ExportFormat = "generic-xlsx"
	FormatMoneyFwd    ExportFormat = "mf"
	FormatFreee       ExportFormat = "freee"
	FormatFreeeImport ExportFormat = "freee-import"
)
