package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/metrics"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var baseHeaders = []string{"Form Type", "Name", "Age", "Contact", "Email", "Position(s)", "Date", "City", "Status"}

type Options struct {
	// IncludeNotes appends the admin comment and review notes columns.
	IncludeNotes bool
	// Sheet names the single worksheet, "Applications" when empty.
	Sheet string
}

func Headers(opts Options) []string {
	h := append([]string{}, baseHeaders...)
	if opts.IncludeNotes {
		h = append(h, "Comment", "Review Notes")
	}
	return h
}

func Row(a application.Application, opts Options) []string {
	age := ""
	if a.Age != 0 {
		age = strconv.Itoa(int(a.Age))
	}
	date := ""
	if !a.CreatedAt.IsZero() {
		date = a.CreatedAt.Format(dateLayout)
	}
	row := []string{
		string(a.JobTitle),
		a.FullName,
		age,
		a.ContactNumber,
		a.Email,
		a.PositionText(),
		date,
		a.City,
		string(a.Status),
	}
	if opts.IncludeNotes {
		row = append(row, a.Comment, a.ReviewNotes)
	}
	return row
}

// Workbook builds a one sheet workbook with a header row followed by one row
// per application in the given order.
func Workbook(list []application.Application, opts Options) (*excelize.File, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = "Applications"
	}
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "unable to name sheet")
	}

	headers := Headers(opts)
	if err := writeRow(f, sheet, 1, headers); err != nil {
		f.Close()
		return nil, err
	}
	for i, a := range list {
		if err := writeRow(f, sheet, i+2, Row(a, opts)); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, bold)
	}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(h) + 2)
		if width < 12 {
			width = 12
		}
		f.SetColWidth(sheet, col, col, width)
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return errors.Wrap(err, "unable to address row")
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return errors.Wrapf(f.SetSheetRow(sheet, cell, &row), "unable to write row %d", n)
}

// Write streams the workbook for list to w. scope labels the export in metrics.
func Write(w io.Writer, list []application.Application, opts Options, scope string) error {
	f, err := Workbook(list, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "unable to write workbook")
	}
	metrics.Exports.WithLabelValues(scope).Inc()
	return nil
}

func SheetName(c application.Category) string {
	s := string(c)
	if s == "" {
		return "Applications"
	}
	name := strings.ToUpper(s[:1]) + s[1:]
	// excelize rejects sheet names over 31 characters
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func DashboardFilename(now time.Time) string {
	return fmt.Sprintf("job_applications_%s.xlsx", now.Format(dateLayout))
}

func CategoryFilename(c application.Category) string {
	return fmt.Sprintf("%s-applications.xlsx", c)
}

func RecordFilename(a application.Application) string {
	name := slug.Make(a.FullName)
	if name == "" {
		name = a.ID
	}
	return fmt.Sprintf("%s-%s.xlsx", a.JobTitle, name)
}
