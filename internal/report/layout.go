package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Style names resolved to workbook styles at render time.
const (
	StyleNone         = ""
	StyleOverviewHead = "overviewTitle"
	StyleDescription  = "description"
	StyleColumnHead   = "columnHeader"
	StyleTitle        = "title"
	StyleGreen        = "green"
	StyleBlue         = "blue"
	StyleDarkBlue     = "darkBlue"
	StyleRestriction  = "restriction"
	StyleData         = "data"
)

type Cell struct {
	Ref   string
	Value interface{}
	Style string
}

// Sheet is a worksheet described cell by cell before it is written.
type Sheet struct {
	Name    string
	Widths  []float64
	Heights map[int]float64
	Cells   []Cell
	Merges  [][2]string
}

func NewSheet(name string, widths ...float64) *Sheet {
	return &Sheet{Name: name, Widths: widths, Heights: map[int]float64{}}
}

// Set places v at the 1-based col and row.
func (s *Sheet) Set(col, row int, v interface{}, style string) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	s.Cells = append(s.Cells, Cell{Ref: ref, Value: v, Style: style})
}

// SetRow writes values left to right starting at col.
func (s *Sheet) SetRow(col, row int, style string, values ...interface{}) {
	for i, v := range values {
		s.Set(col+i, row, v, style)
	}
}

func (s *Sheet) Merge(from, to string) {
	s.Merges = append(s.Merges, [2]string{from, to})
}

// Dump writes a stable text form of the sheet, one cell per line.
func (s *Sheet) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "[%s]\n", s.Name); err != nil {
		return err
	}
	for _, c := range s.Cells {
		style := c.Style
		if style == StyleNone {
			style = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%v\n", c.Ref, style, c.Value); err != nil {
			return err
		}
	}
	for _, m := range s.Merges {
		if _, err := fmt.Fprintf(w, "merge\t%s:%s\n", m[0], m[1]); err != nil {
			return err
		}
	}
	return nil
}

var (
	colorDarkBlue = "000066"
	colorBlue     = "333399"
	colorGreen    = "75923C"
	colorYellow   = "FFFFCC"
	colorGray     = "808080"
)

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

var styleDefs = map[string]*excelize.Style{
	StyleOverviewHead: {Font: &excelize.Font{Family: "Calibri", Size: 22, Bold: true, Color: colorDarkBlue}},
	StyleDescription: {
		Font:      &excelize.Font{Family: "Verdana", Size: 10},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	},
	StyleColumnHead: {Font: &excelize.Font{Family: "Arial", Size: 10, Bold: true}},
	StyleTitle:      {Font: &excelize.Font{Family: "Arial", Size: 14, Bold: true, Color: colorDarkBlue}},
	StyleGreen: {
		Font:   &excelize.Font{Family: "Arial", Size: 8, Bold: true, Color: "FFFFFF"},
		Fill:   solid(colorGreen),
		Border: thinBorders(),
	},
	StyleBlue: {
		Font:      &excelize.Font{Family: "Arial", Size: 8, Bold: true, Color: "FFFFFF"},
		Fill:      solid(colorBlue),
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	},
	StyleDarkBlue: {
		Font:   &excelize.Font{Family: "Arial", Size: 8, Bold: true, Color: "FFFFFF"},
		Fill:   solid(colorDarkBlue),
		Border: thinBorders(),
	},
	StyleRestriction: {
		Font:   &excelize.Font{Family: "Arial", Size: 8, Color: colorGray},
		Fill:   solid(colorYellow),
		Border: thinBorders(),
	},
	StyleData: {
		Font:   &excelize.Font{Family: "Arial", Size: 8},
		Border: thinBorders(),
	},
}

// Render writes sheets into a new workbook in order. The first sheet replaces
// the default one.
func Render(sheets ...*Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	styles := map[string]int{}
	styleID := func(name string) (int, error) {
		if id, ok := styles[name]; ok {
			return id, nil
		}
		def, ok := styleDefs[name]
		if !ok {
			return 0, fmt.Errorf("unknown style %q", name)
		}
		id, err := f.NewStyle(def)
		if err != nil {
			return 0, err
		}
		styles[name] = id
		return id, nil
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, err
		}

		for col, width := range s.Widths {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(s.Name, name, name, width); err != nil {
				return nil, err
			}
		}
		for row, height := range s.Heights {
			if err := f.SetRowHeight(s.Name, row, height); err != nil {
				return nil, err
			}
		}
		for _, c := range s.Cells {
			if err := f.SetCellValue(s.Name, c.Ref, c.Value); err != nil {
				return nil, err
			}
			if c.Style == StyleNone {
				continue
			}
			id, err := styleID(c.Style)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(s.Name, c.Ref, c.Ref, id); err != nil {
				return nil, err
			}
		}
		for _, m := range s.Merges {
			if err := f.MergeCell(s.Name, m[0], m[1]); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}
