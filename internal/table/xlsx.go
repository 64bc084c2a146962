package table

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read loads the selected sheet. If opt.SheetName is empty the sheet with
// sheetId == opt.SheetIndex (1-based, default 1) is used.
func (xlsxReader) Read(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))

	target, err := resolveSheet(sheets, rels, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))
	rr := newSheetRowReader(readZipFile(zr, target), shared)

	t := &Table{Name: filepath.Base(path)}
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return t, nil
	}
	t.Header = pad(header, len(header))
	for {
		rec, ok := rr.Next()
		if !ok {
			break
		}
		if opt.MaxRows > 0 && len(t.Rows) >= opt.MaxRows {
			break
		}
		t.Rows = append(t.Rows, pad(rec, len(header)))
	}
	return t, nil
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

func resolveSheet(sheets []wbSheet, rels map[string]string, opt Options) (string, error) {
	if opt.SheetName != "" {
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available: %s)", opt.SheetName, strings.Join(names, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	for _, s := range sheets {
		if s.SheetID == idx {
			if rel, ok := rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx), nil
}

// scanElements calls fn with the attributes of every start element named local.
func scanElements(data []byte, local string, fn func(attrs map[string]string)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		attrs := make(map[string]string, len(se.Attr))
		for _, a := range se.Attr {
			attrs[a.Name.Local] = a.Value
		}
		fn(attrs)
	}
}

func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	scanElements(data, "sheet", func(a map[string]string) {
		// "id" lives in the r: namespace
		id, _ := strconv.Atoi(a["sheetId"])
		sheets = append(sheets, wbSheet{Name: a["name"], SheetID: id, RID: a["id"]})
	})
	return sheets
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	scanElements(data, "Relationship", func(a map[string]string) {
		if a["Id"] != "" && a["Target"] != "" {
			out[a["Id"]] = a["Target"]
		}
	})
	return out
}

// readZipFile returns the entry's bytes, or nil when it is missing.
func readZipFile(zr *zip.Reader, name string) []byte {
	b, err := fs.ReadFile(zr, name)
	if err != nil {
		return nil
	}
	return b
}

type sharedStringTable struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// parseSharedStrings returns the text of every <si> entry, rich-text runs
// concatenated.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var sst sharedStringTable
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil
	}
	out := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		text := si.Text
		for _, r := range si.Runs {
			text += r.Text
		}
		out[i] = text
	}
	return out
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the cells of the next <row>, placed by their A1 reference.
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow, row = true, nil
				continue
			}
			if !inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := len(row)
			if ref != "" {
				col = colIndexFromRef(ref)
			}
			if col < 0 {
				col = len(row)
			}
			if len(row) <= col {
				row = pad(row, col+1)
			}
			row[col] = r.readCellValue(typ)
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				if row == nil {
					row = []string{}
				}
				return row, true
			}
		}
	}
}

// readCellValue consumes tokens up to </c>, keeping the text of <v> or <is><t>.
func (r *sheetRowReader) readCellValue(typ string) string {
	var val strings.Builder
	inVal := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				inVal = true
			}
		case xml.CharData:
			if inVal {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				inVal = false
			case "c":
				if typ == "s" {
					idx, err := strconv.Atoi(strings.TrimSpace(val.String()))
					if err == nil && idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val.String()
			}
		}
	}
}

// colIndexFromRef maps refs like "C12" to a 0-based column index (2).
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

// normalizeRelPath converts relationship targets to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml"); ZIP entries don't.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
