package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/common"
	"github.com/ryo-ito/shiwakegen/internal/extract"
)

// utf8BOM keeps Excel from mojibake when opening the UTF-8 CSVs directly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer renders entry batches to files under the output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "output"
	}
	return &Writer{dir: dir, logger: logger}
}

// Write renders the entries in the requested format and returns the written
// path. asTXT switches the text formats to a .txt file; the freee manual
// journal is always Shift-JIS CSV because that is what freee accepts.
func (w *Writer) Write(entries []extract.Entry, baseName string, format constants.ExportFormat, asTXT bool) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var path string
	var err error
	switch format {
	case constants.FormatGeneric:
		path, err = w.writeCSV(baseName, GenericColumns, rows(entries, GenericRow), asTXT, ',')
	case constants.FormatMoneyFwd:
		path, err = w.writeCSV(baseName, MFColumns, rows(entries, MFRow), asTXT, ',')
	case constants.FormatFreee:
		path, err = w.writeFreeeCSV(baseName, entries)
	case constants.FormatFreeeImport:
		sep := ','
		if asTXT {
			sep = '\t'
		}
		path, err = w.writeCSV(baseName+"_freee_import", FreeeImportColumns, rows(entries, FreeeImportRow), asTXT, sep)
	case constants.FormatGenericXLSX:
		path, err = w.writeXLSX(baseName, entries)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}
	w.logger.Info("export.write.ok", "format", string(format), "rows", len(entries), "path", path)
	return path, nil
}

func rows(entries []extract.Entry, build func(extract.Entry) []string) [][]string {
	out := make([][]string, len(entries))
	for i, e := range entries {
		out[i] = build(e)
	}
	return out
}

func (w *Writer) writeCSV(baseName string, header []string, body [][]string, asTXT bool, sep rune) (string, error) {
	ext := ".csv"
	if asTXT {
		ext = ".txt"
	}
	path := filepath.Join(w.dir, baseName+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(f)
	cw.Comma = sep
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(body); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	return path, cw.Error()
}

func (w *Writer) writeFreeeCSV(baseName string, entries []extract.Entry) (string, error) {
	path := filepath.Join(w.dir, baseName+"_freee.csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := transform.NewWriter(f, japanese.ShiftJIS.NewEncoder())
	cw := csv.NewWriter(enc)
	if err := cw.Write(FreeeColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows(entries, FreeeRow)); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("flush shift-jis encoder: %w", err)
	}
	return path, nil
}

func (w *Writer) writeXLSX(baseName string, entries []extract.Entry) (string, error) {
	path := filepath.Join(w.dir, baseName+".xlsx")

	f := excelize.NewFile()
	const sheet = "仕訳"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}

	for i, h := range GenericColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, e := range entries {
		for c, v := range GenericRow(e) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "C", 14) // account, source
	_ = f.SetColWidth(sheet, "D", "E", 12) // amounts
	_ = f.SetColWidth(sheet, "F", "F", 24) // company
	_ = f.SetColWidth(sheet, "G", "G", 40) // description

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}
	return path, nil
}
