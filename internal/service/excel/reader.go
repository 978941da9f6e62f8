package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"timesheet/internal/model"
)

// ErrUnreadableWorkbook 输入无法作为表格解析
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

// maxXLSRows 旧版 xls 单表读取上限
const maxXLSRows = 65536

// SupportedExtensions 支持的文件扩展名
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// IsSupported 是否为支持的文件
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadWorkbook 读取工作簿的全部工作表，按工作簿中的顺序返回
// 任何读取失败都包装为 ErrUnreadableWorkbook
func LoadWorkbook(reader io.Reader, filename string) ([]model.RawSheet, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadableWorkbook)
	}

	var sheets []model.RawSheet
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		sheets, err = readXLS(data)
	case ".csv":
		sheets, err = readCSV(data, filename)
	default:
		sheets, err = readXLSX(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrUnreadableWorkbook)
	}
	return sheets, nil
}

// readXLSX 读取 xlsx，合并单元格按左上角的值填充
func readXLSX(data []byte) ([]model.RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	sheets := make([]model.RawSheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		merged, err := f.GetMergeCells(name)
		if err == nil {
			rows = fillMerged(rows, merged)
		}
		sheets = append(sheets, model.RawSheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// fillMerged 把合并区域的值写入区域内每个单元格
func fillMerged(rows [][]string, merged []excelize.MergeCell) [][]string {
	for _, mc := range merged {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		value := mc.GetCellValue()
		for r := startRow; r <= endRow; r++ {
			for len(rows) < r {
				rows = append(rows, nil)
			}
			row := rows[r-1]
			for len(row) < endCol {
				row = append(row, "")
			}
			for c := startCol; c <= endCol; c++ {
				row[c-1] = value
			}
			rows[r-1] = row
		}
	}
	return rows
}

// readXLS 读取旧版 xls 的所有工作表，解析库在损坏文件上可能 panic
func readXLS(data []byte) (sheets []model.RawSheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("parse xls: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	sheets = make([]model.RawSheet, 0, workbook.NumSheets())
	for i := 0; i < workbook.NumSheets(); i++ {
		ws := workbook.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow) && r < maxXLSRows; r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, model.RawSheet{Name: ws.Name, Rows: trimTrailingBlank(rows)})
	}
	return sheets, nil
}

// readCSV csv 视为单个工作表，表名取文件名
func readCSV(data []byte, filename string) ([]model.RawSheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return []model.RawSheet{{Name: name, Rows: rows}}, nil
}

func trimTrailingBlank(rows [][]string) [][]string {
	for len(rows) > 0 && model.IsBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}
