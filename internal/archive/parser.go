package archive

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

const (
	// SourceManifest means records came from the manifest.json inside the archive.
	SourceManifest = "manifest"
	// SourceFallback means records came from the filename-convention scan.
	SourceFallback = "fallback"
)

const (
	manifestName = "manifest.json"
	billPrefix   = "Bill_"
	pdfExt       = ".pdf"
)

// adminPrefixes mark summary documents produced for the back office, not for
// a recipient. They are never turned into billing records.
var adminPrefixes = []string{"Bill_Admin", "Bill_Summary"}

// BillingRecord is one parsed bill, immutable once produced.
type BillingRecord struct {
	// AccountKey links the bill to a contact. Trimmed, case-preserving,
	// never empty.
	AccountKey string `json:"account_key"`
	// PDFFilename is the base name of the attachment file.
	PDFFilename string `json:"pdf_filename"`
	// ArchiveEntryPath is the full path of the PDF within the archive,
	// used to re-locate bytes. May differ from PDFFilename.
	ArchiveEntryPath string `json:"archive_entry_path"`
	// TradeDate is free-form and descriptive only; empty when unknown.
	TradeDate string `json:"trade_date,omitempty"`
}

// ParseResult is the outcome of parsing one uploaded archive.
type ParseResult struct {
	Records     []BillingRecord `json:"records"`
	Source      string          `json:"source"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

type manifest struct {
	TradeDate string          `json:"trade_date"`
	Success   []manifestEntry `json:"success"`
}

type manifestEntry struct {
	Key string `json:"key"`
	PDF string `json:"pdf"`
}

// Parse produces normalized billing records from a decoded archive. It tries
// the manifest path first and falls back to a filename-convention scan.
// Records that fail validation are dropped silently; only archive-level
// findings surface as diagnostics.
func Parse(r *Reader) *ParseResult {
	res := &ParseResult{Source: SourceFallback}

	if raw, ok := r.manifestBytes(); ok {
		var m manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			res.Diagnostics = append(res.Diagnostics,
				fmt.Sprintf("%s is not valid JSON, falling back to filename scan: %v", manifestName, err))
		} else {
			res.Source = SourceManifest
			res.Records = recordsFromManifest(&m)
		}
	}

	if res.Source == SourceFallback {
		res.Records = recordsFromFilenames(r)
	}

	if len(res.Records) == 0 {
		res.Diagnostics = append(res.Diagnostics,
			fmt.Sprintf("no bill PDFs found in %s", r.Filename))
	}
	return res
}

// manifestBytes returns the raw manifest document if one exists at the
// archive root.
func (r *Reader) manifestBytes() ([]byte, bool) {
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Clean(f.Name) == manifestName {
			data, err := readEntry(f)
			if err != nil {
				return nil, false
			}
			return data, true
		}
	}
	return nil, false
}

func recordsFromManifest(m *manifest) []BillingRecord {
	records := make([]BillingRecord, 0, len(m.Success))
	for _, e := range m.Success {
		key := strings.TrimSpace(e.Key)
		if key == "" || e.PDF == "" {
			continue
		}
		base := path.Base(e.PDF)
		if !isPDF(base) || isAdminFile(base) {
			continue
		}
		records = append(records, BillingRecord{
			AccountKey:       key,
			PDFFilename:      base,
			ArchiveEntryPath: e.PDF,
			TradeDate:        strings.TrimSpace(m.TradeDate),
		})
	}
	return records
}

// recordsFromFilenames scans every archive entry for the Bill_{key}_{date}.pdf
// convention. The account key is the token before the first underscore after
// the prefix; the remainder is the trade date.
func recordsFromFilenames(r *Reader) []BillingRecord {
	var records []BillingRecord
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		if !strings.HasPrefix(base, billPrefix) || !isPDF(base) || isAdminFile(base) {
			continue
		}

		rest := base[len(billPrefix) : len(base)-len(pdfExt)]
		key, date := rest, ""
		if idx := strings.Index(rest, "_"); idx >= 0 {
			key = rest[:idx]
			date = strings.TrimSpace(rest[idx+1:])
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		records = append(records, BillingRecord{
			AccountKey:       key,
			PDFFilename:      base,
			ArchiveEntryPath: f.Name,
			TradeDate:        date,
		})
	}
	return records
}

func isPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), pdfExt)
}

func isAdminFile(base string) bool {
	for _, p := range adminPrefixes {
		if strings.HasPrefix(base, p) {
			return true
		}
	}
	return false
}
