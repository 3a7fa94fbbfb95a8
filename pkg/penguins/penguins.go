// Package penguins loads and samples the Palmer Penguins reference dataset.
//
// The dataset describes penguins observed in the Palmer Archipelago,
// Antarctica: species (Adelie, Chinstrap, or Gentoo), island (Biscoe, Dream,
// or Torgersen), bill and flipper measurements, body mass, sex, and the
// study year. Missing measurements appear as "NA" in the CSV and map to nil
// fields here.
package penguins

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Penguin is one row of the dataset. Measurement fields are pointers so
// missing values serialize as null rather than zero.
type Penguin struct {
	Species         string   `json:"species"`
	Island          string   `json:"island"`
	BillLengthMM    *float64 `json:"bill_length_mm"`
	BillDepthMM     *float64 `json:"bill_depth_mm"`
	FlipperLengthMM *float64 `json:"flipper_length_mm"`
	BodyMassG       *float64 `json:"body_mass_g"`
	Sex             string   `json:"sex"`
	Year            int      `json:"year"`
}

// Dataset is an immutable, loaded copy of the reference data.
type Dataset struct {
	penguins []Penguin
}

// LoadFile loads the dataset from a CSV file on disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open penguin dataset: %w", err)
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("could not load penguin dataset from %s: %w", path, err)
	}
	return ds, nil
}

// Load parses CSV data with a header row into a Dataset. Column order is
// taken from the header, so files with reordered or extra columns still
// load.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"species", "island"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset is missing required column %q", required)
		}
	}

	var rows []Penguin
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read CSV record: %w", err)
		}

		p := Penguin{
			Species: field(record, col, "species"),
			Island:  field(record, col, "island"),
			Sex:     field(record, col, "sex"),
		}
		p.BillLengthMM = floatField(record, col, "bill_length_mm")
		p.BillDepthMM = floatField(record, col, "bill_depth_mm")
		p.FlipperLengthMM = floatField(record, col, "flipper_length_mm")
		p.BodyMassG = floatField(record, col, "body_mass_g")
		if y := field(record, col, "year"); y != "" {
			p.Year, _ = strconv.Atoi(y)
		}
		if strings.EqualFold(p.Sex, "na") {
			p.Sex = ""
		}

		rows = append(rows, p)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset contains no rows")
	}

	return &Dataset{penguins: rows}, nil
}

// Len returns the number of rows in the dataset.
func (d *Dataset) Len() int {
	return len(d.penguins)
}

// Penguins returns a copy of all rows.
func (d *Dataset) Penguins() []Penguin {
	out := make([]Penguin, len(d.penguins))
	copy(out, d.penguins)
	return out
}

// Sample draws n random rows without replacement. When n meets or exceeds
// the dataset size, every row is returned in random order.
func (d *Dataset) Sample(n int) []Penguin {
	if n <= 0 {
		return nil
	}
	if n > len(d.penguins) {
		n = len(d.penguins)
	}

	out := make([]Penguin, 0, n)
	for _, idx := range rand.Perm(len(d.penguins))[:n] {
		out = append(out, d.penguins[idx])
	}
	return out
}

func field(record []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[idx])
	if strings.EqualFold(v, "na") {
		return ""
	}
	return v
}

func floatField(record []string, col map[string]int, name string) *float64 {
	v := field(record, col, name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
