package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/dyike/EquilibriumGo/pkg/chart"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

var sampleHeaders = []string{"price", "supply_quantity", "demand_quantity"}

type CSVManager struct {
	basePath string
}

func NewCSVManager(basePath string) *CSVManager {
	return &CSVManager{
		basePath: basePath,
	}
}

// SamplesPath returns a timestamped file name under <base>/csv.
func (c *CSVManager) SamplesPath(count int, at time.Time) string {
	return filepath.Join(c.basePath, "csv",
		fmt.Sprintf("market_samples_%d_records_%s.csv", count, at.Format("20060102_150405")))
}

// WriteSamplesToCSV writes sampled curve quantities to path, or to a
// generated path under the base directory when path is empty. Sides that
// could not be evaluated are left blank.
func (c *CSVManager) WriteSamplesToCSV(path string, samples []chart.Sample) (string, error) {
	if path == "" {
		path = c.SamplesPath(len(samples), time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteSamples(file, samples); err != nil {
		return "", err
	}
	return path, nil
}

func WriteSamples(w io.Writer, samples []chart.Sample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(sampleHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, s := range samples {
		row := []string{strconv.FormatFloat(s.Price, 'f', 4, 64), "", ""}
		if s.SupplyOK {
			row[1] = strconv.FormatFloat(s.Supply, 'f', 4, 64)
		}
		if s.DemandOK {
			row[2] = strconv.FormatFloat(s.Demand, 'f', 4, 64)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadPointsCSV loads price,quantity pairs from a file. See ReadPoints.
func ReadPointsCSV(path string) (models.Points, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	points, err := ReadPoints(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// ReadPoints reads price,quantity rows. A first row whose price column is not
// numeric is treated as a header. Blank lines and lines starting with # are
// skipped.
func ReadPoints(r io.Reader) (models.Points, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var points models.Points
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want price,quantity, got %d field(s)", line, len(record))
		}
		if line == 1 && isHeader(record[0]) {
			continue
		}

		p, err := models.ParsePoint(record[0] + "," + record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no data in CSV file")
	}
	return points, nil
}

func isHeader(field string) bool {
	_, err := cast.ToFloat64E(strings.TrimSpace(field))
	return err != nil
}
