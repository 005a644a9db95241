// Package markups reads and writes Slicer markups point lists (.fcsv)
// and exposes them as the point set a classification run annotates.
package markups

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"brainzone/internal/models"
)

// DefaultColumns is the column layout written by Slicer 4.x.
var DefaultColumns = []string{
	"id", "x", "y", "z", "ow", "ox", "oy", "oz",
	"vis", "sel", "lock", "label", "desc", "associatedNodeID",
}

const (
	columnsPrefix = "# columns ="
	systemPrefix  = "# CoordinateSystem ="
)

// Point is one row of a markups file.
type Point struct {
	// Fields holds the raw row keyed by column name
	Fields map[string]string

	// Position is the RAS position of the point
	Position [3]float64

	Selected    bool
	Description string

	// read is the position as parsed; while Position still equals it the
	// coordinate text in Fields is written back unchanged
	read   [3]float64
	parsed bool
}

// Label returns the point's display label
func (p *Point) Label() string {
	return p.Fields["label"]
}

// List is an ordered markups point list.
type List struct {
	// Header holds the '#' comment lines, kept verbatim for writing
	Header []string

	// Columns is the column order of the data rows
	Columns []string

	// LPS is true when the file stores positions in LPS coordinates
	LPS bool

	Points []*Point
}

// Load reads a markups file from disk
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "markups: open %s: %v", path, err)
	}
	defer f.Close()

	list, err := Read(f)
	if err != nil {
		return nil, eris.Wrapf(err, "markups: %s", path)
	}
	return list, nil
}

// Read parses a markups file. Comment lines before the data carry the
// column layout ("# columns = ...") and the coordinate system
// ("# CoordinateSystem = LPS|RAS|0|1"); positions are converted to RAS.
func Read(r io.Reader) (*List, error) {
	list := &List{Columns: DefaultColumns}

	var body strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") {
			list.Header = append(list.Header, line)
			list.readHeader(line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "read: %v", err)
	}

	cr := csv.NewReader(strings.NewReader(body.String()))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(models.ErrParse, "%v", err)
	}

	for n, rec := range records {
		p, err := list.parsePoint(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "point %d", n)
		}
		list.Points = append(list.Points, p)
	}

	return list, nil
}

func (l *List) readHeader(line string) {
	switch {
	case strings.HasPrefix(line, columnsPrefix):
		cols := strings.Split(strings.TrimSpace(strings.TrimPrefix(line, columnsPrefix)), ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		l.Columns = cols
	case strings.HasPrefix(line, systemPrefix):
		system := strings.TrimSpace(strings.TrimPrefix(line, systemPrefix))
		l.LPS = system == "LPS" || system == "1"
	}
}

func (l *List) parsePoint(rec []string) (*Point, error) {
	p := &Point{Fields: make(map[string]string, len(l.Columns))}
	for i, col := range l.Columns {
		if i < len(rec) {
			p.Fields[col] = rec[i]
		}
	}

	for axis, col := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.Fields[col]), 64)
		if err != nil {
			return nil, eris.Wrapf(models.ErrParse, "invalid %s coordinate %q", col, p.Fields[col])
		}
		p.Position[axis] = v
	}
	if l.LPS {
		p.Position[0], p.Position[1] = -p.Position[0], -p.Position[1]
	}
	p.read, p.parsed = p.Position, true

	// Slicer writes sel=1 for selected points; a missing column means selected
	sel := strings.TrimSpace(p.Fields["sel"])
	p.Selected = sel == "" || sel == "1" || strings.EqualFold(sel, "true")
	p.Description = p.Fields["desc"]

	return p, nil
}

// Count returns the number of points
func (l *List) Count() int {
	return len(l.Points)
}

// IsSelected reports whether point i takes part in classification
func (l *List) IsSelected(i int) bool {
	return l.Points[i].Selected
}

// Position returns the RAS position of point i
func (l *List) Position(i int) [3]float64 {
	return l.Points[i].Position
}

// Description returns the free-text description of point i
func (l *List) Description(i int) string {
	return l.Points[i].Description
}

// Label returns the display label of point i
func (l *List) Label(i int) string {
	return l.Points[i].Label()
}

// AppendDescription adds text to the end of point i's description
func (l *List) AppendDescription(i int, text string) {
	l.Points[i].Description += text
}

// Write serialises the list back in its original column layout and
// coordinate system.
func (l *List) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, h := range l.Header {
		if _, err := bw.WriteString(h + "\n"); err != nil {
			return eris.Wrap(err, "markups: write header")
		}
	}

	cw := csv.NewWriter(bw)
	for _, p := range l.Points {
		rec := make([]string, len(l.Columns))
		for i, col := range l.Columns {
			switch col {
			case "x":
				rec[i] = l.coordinate(p, 0)
			case "y":
				rec[i] = l.coordinate(p, 1)
			case "z":
				rec[i] = l.coordinate(p, 2)
			case "desc":
				rec[i] = p.Description
			default:
				rec[i] = p.Fields[col]
			}
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "markups: write point")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "markups: flush")
	}
	return bw.Flush()
}

// coordinate renders one axis of p in the file's coordinate system.
// Unmoved coordinates keep their original text.
func (l *List) coordinate(p *Point, axis int) string {
	col := [3]string{"x", "y", "z"}[axis]
	if raw, ok := p.Fields[col]; ok && p.parsed && p.Position[axis] == p.read[axis] {
		return raw
	}

	v := p.Position[axis]
	if l.LPS && axis < 2 {
		v = -v
	}
	if v == 0 {
		// no "-0" for a negated origin
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Save writes the list to path
func (l *List) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "markups: create %s", path)
	}
	if err := l.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
