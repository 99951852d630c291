package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/extract"
)

func TestWriteGenericCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.Write([]extract.Entry{expenseEntry}, "journal", constants.FormatGeneric, false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "journal.csv" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Error("generic CSV must start with a UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, expected header + 1 row", len(records))
	}
	if records[0][0] != "取引日" || records[1][1] != "会議費" {
		t.Errorf("unexpected content: %v", records)
	}
}

func TestWriteMoneyForwardTXT(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.Write([]extract.Entry{expenseEntry}, "journal", constants.FormatMoneyFwd, true)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "journal.txt" {
		t.Errorf("path = %s", path)
	}
	data, _ := os.ReadFile(path)
	// the txt variant stays comma separated, only the extension changes
	if !strings.Contains(string(data), "借方勘定科目,") {
		t.Error("expected comma separated MF header")
	}
}

func TestWriteFreeeShiftJIS(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.Write([]extract.Entry{expenseEntry}, "journal", constants.FormatFreee, false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "journal_freee.csv" {
		t.Errorf("path = %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("仕訳")) {
		t.Error("freee CSV must not contain raw UTF-8 Japanese")
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		t.Fatalf("decode shift-jis: %v", err)
	}
	if !bytes.Contains(decoded, []byte("借方勘定科目")) {
		t.Error("decoded header missing 借方勘定科目")
	}
}

func TestWriteFreeeImportTSV(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.Write([]extract.Entry{expenseEntry}, "journal", constants.FormatFreeeImport, true)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "journal_freee_import.txt" {
		t.Errorf("path = %s", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "収支区分\t") {
		t.Error("expected tab separated freee import header")
	}
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.Write([]extract.Entry{expenseEntry, revenueEntry}, "journal", constants.FormatGenericXLSX, false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "journal.xlsx" {
		t.Errorf("path = %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("xlsx file missing or empty: %v", err)
	}
}
