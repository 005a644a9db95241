// Package labels loads the lookup resources a classification run needs:
// the atlas color lookup table (integer code to structure name) and the
// long-name/acronym correspondence used to shorten zone labels.
package labels

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"brainzone/internal/models"
)

// minLUTLineLength is the shortest line that can carry an entry.
// Anything shorter is treated as padding between blocks.
const minLUTLineLength = 10

// LUT maps atlas label codes to raw structure names. It is read-only
// once built.
type LUT struct {
	names map[int]string
}

// NewLUT builds a lookup table from an existing code to name mapping.
func NewLUT(names map[int]string) *LUT {
	m := make(map[int]string, len(names))
	for code, name := range names {
		m[code] = name
	}
	return &LUT{names: m}
}

// LoadLUT reads a color lookup table from disk.
func LoadLUT(path string) (*LUT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "labels: open lookup table %s: %v", path, err)
	}
	defer f.Close()

	lut, err := ParseLUT(f)
	if err != nil {
		return nil, eris.Wrapf(err, "labels: %s", path)
	}
	return lut, nil
}

// ParseLUT parses a FreeSurfer style color table:
//
//	#No. Label Name:                 R   G   B   A
//	0   Unknown                      0   0   0   0
//	2   Left-Cerebral-White-Matter 245 245 245   0
//
// Lines starting with '#' or shorter than ten characters are skipped.
// For every other line the first field is the code and the second the
// name; remaining fields (colors) are ignored.
func ParseLUT(r io.Reader) (*LUT, error) {
	names := make(map[int]string)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || len(line) < minLUTLineLength {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, eris.Wrapf(models.ErrParse, "line %d: expected code and name in %q", lineNo, line)
		}

		code, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, eris.Wrapf(models.ErrParse, "line %d: invalid code %q in %q", lineNo, fields[0], line)
		}
		names[code] = norm.NFC.String(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "read lookup table: %v", err)
	}

	if len(names) == 0 {
		return nil, eris.Wrap(models.ErrConfiguration, "lookup table has no entries")
	}

	return &LUT{names: names}, nil
}

// Name returns the raw structure name for code.
func (l *LUT) Name(code int) (string, bool) {
	name, ok := l.names[code]
	return name, ok
}

// Len returns the number of codes in the table.
func (l *LUT) Len() int {
	return len(l.names)
}

// Codes returns every code in ascending order.
func (l *LUT) Codes() []int {
	codes := make([]int, 0, len(l.names))
	for code := range l.names {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
