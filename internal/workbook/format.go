package workbook

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies a spreadsheet container format
type Format string

const (
	FormatUnknown Format = ""
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLSM = "application/vnd.ms-excel.sheet.macroenabled.12"
	mimeXLS  = "application/vnd.ms-excel"
	mimeOLE  = "application/x-ole-storage"
	mimeZip  = "application/zip"
)

// DetectFormat sniffs the container format from content, falling back to the
// file extension when the content is only recognised as a generic zip or OLE file.
func DetectFormat(name string, data []byte) Format {
	byExt := formatFromExtension(name)

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeXLSX), m.Is(mimeXLSM):
			return FormatXLSX
		case m.Is(mimeXLS):
			return FormatXLS
		case m.Is(mimeZip):
			// excelize writes workbooks whose first entries do not always
			// reveal the OOXML type within the sniffing window
			if byExt == FormatXLS {
				return FormatUnknown
			}
			return FormatXLSX
		case m.Is(mimeOLE):
			if byExt == FormatXLSX {
				return FormatUnknown
			}
			return FormatXLS
		}
	}

	return FormatUnknown
}

// MIMEType returns the sniffed content type, used for upload diagnostics
func MIMEType(data []byte) string {
	return mimetype.Detect(data).String()
}

func formatFromExtension(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatUnknown
}
