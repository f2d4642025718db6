package todo

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/mediator"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

func exportList(list *models.TodoList, format string) (*ExportFile, error) {
	switch format {
	case "", FormatCSV:
		content, err := exportCSV(list.Items)
		if err != nil {
			return nil, err
		}
		return &ExportFile{FileName: "TodoItems.csv", ContentType: "text/csv", Content: content}, nil
	case FormatPDF:
		content, err := exportPDF(list)
		if err != nil {
			return nil, err
		}
		return &ExportFile{FileName: "TodoItems.pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, mediator.ArgumentError{
			Name: "Format", Msg: fmt.Sprintf("unsupported export format '%s'", format),
		}
	}
}

func exportCSV(items []*models.TodoItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Title", "Done"}); err != nil {
		return nil, fmt.Errorf("failed writing CSV header: %w", err)
	}
	for _, item := range items {
		if err := w.Write([]string{item.Title, yesNo(item.Done)}); err != nil {
			return nil, fmt.Errorf("failed writing CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed writing CSV data: %w", err)
	}

	return buf.Bytes(), nil
}

func exportPDF(list *models.TodoList) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(list.Title, true)
	pdf.SetAuthor("todo", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, list.Title)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	if len(list.Items) == 0 {
		pdf.Cell(0, 8, "This list has no items.")
		pdf.Ln(8)
	}
	for _, item := range list.Items {
		mark := "[ ]"
		if item.Done {
			mark = "[x]"
		}
		pdf.Cell(0, 8, fmt.Sprintf("%s %s (%s)", mark, item.Title, item.Priority))
		pdf.Ln(8)
		if item.Note != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, item.Note, "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed rendering PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
