package feed

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// CSVReader reads order files laid out as
//
//	symbol,trader,side,price,size
//
// with side 0 for buy and 1 for sell and price as a currency amount
// (1.01 is 101 ticks). Blank lines are skipped.
type CSVReader struct {
	r    *csv.Reader
	line int
}

func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVReader{r: cr}
}

// Next returns the next record, or io.EOF at the end of input.
func (c *CSVReader) Next() (Record, error) {
	fields, err := c.r.Read()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "feed: read csv")
	}
	line, _ := c.r.FieldPos(0)
	c.line = line

	rec, err := parseFields(fields)
	if err != nil {
		return Record{}, errors.Wrapf(err, "feed: line %d", line)
	}
	return rec, nil
}

// Line is the input line of the last record returned by Next.
func (c *CSVReader) Line() int { return c.line }

func parseFields(f []string) (Record, error) {
	var (
		rec Record
		err error
	)
	rec.Symbol = strings.TrimSpace(f[0])
	rec.Trader = strings.TrimSpace(f[1])
	if rec.Symbol == "" || rec.Trader == "" {
		return Record{}, errors.New("symbol and trader are required")
	}
	if rec.Side, err = ParseSide(f[2]); err != nil {
		return Record{}, err
	}
	if rec.Price, err = ParsePrice(f[3]); err != nil {
		return Record{}, err
	}
	if rec.Size, err = ParseSize(f[4]); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ReadFile loads every record in the file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "feed: open")
	}
	defer f.Close()

	var out []Record
	r := NewCSVReader(f)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
