// Package xlsx renders expense records into an Excel workbook for the
// export endpoint.
package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/miniledger/easyexp-go/internal/domain"
)

const sheetName = "支出记录"

var headers = []string{"日期", "金额", "报销类型", "支付类型", "报销金额", "备注"}

var columnWidths = []float64{15, 12, 12, 12, 12, 30}

// Render builds a single-sheet workbook from the given expenses, one row
// per record in the order supplied. An empty set still yields a valid
// workbook with just the header row.
func Render(expenses []domain.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := setRow(f, 1, toCells(headers)); err != nil {
		return nil, err
	}

	for i, e := range expenses {
		row := []any{
			e.Date.Format("2006/1/2"),
			e.Amount,
			e.ReimburseType,
			e.PayType,
			cellOrBlank(e.ReimburseAmount),
			e.Other,
		}
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

func toCells(ss []string) []any {
	cells := make([]any, len(ss))
	for i, s := range ss {
		cells[i] = s
	}
	return cells
}

func cellOrBlank(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
