// Package samplesio exports flattened pixel samples and cluster labels to
// columnar and CSV files.
package samplesio

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

const rowBufferSize = 1 << 16

// LabelRow is one labeled pixel: its coordinates and the cluster it landed in.
type LabelRow struct {
	X     float64 `parquet:"x, type=DOUBLE"`
	Y     float64 `parquet:"y, type=DOUBLE"`
	Label int32   `parquet:"label, type=INT32"`
}

// SampleRow is one (pixel, band) observation in long form.
type SampleRow struct {
	X     float64 `parquet:"x, type=DOUBLE"`
	Y     float64 `parquet:"y, type=DOUBLE"`
	Band  string  `parquet:"band, type=UTF8"`
	Value float64 `parquet:"value, type=DOUBLE"`
}

// WriteLabelsParquet writes one row per sample pairing the matrix's carried
// coordinates with the label vector.
func WriteLabelsParquet(m *raster.SampleMatrix, labels []int, path string) error {
	rows := make([]LabelRow, m.Len())
	for i := range rows {
		rows[i] = LabelRow{X: m.X[i], Y: m.Y[i], Label: int32(labels[i])}
	}
	return writeParquet(rows, path)
}

// WriteSamplesParquet writes the matrix in long form, one row per
// (pixel, band) value.
func WriteSamplesParquet(m *raster.SampleMatrix, path string) error {
	n := m.Len()
	rows := make([]SampleRow, 0, n*len(m.Bands))
	for i := 0; i < n; i++ {
		for j, band := range m.Bands {
			rows = append(rows, SampleRow{
				X:     m.X[i],
				Y:     m.Y[i],
				Band:  band,
				Value: m.Values.At(i, j),
			})
		}
	}
	return writeParquet(rows, path)
}

func writeParquet[Row any](rows []Row, path string) error {
	output, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := parquet.SchemaOf(new(Row))
	writer := parquet.NewGenericWriter[Row](output, schema, parquet.Compression(&parquet.Snappy))
	defer func() {
		if err := writer.Close(); err != nil {
			logrus.Error(err)
		}
		if err := output.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	for start := 0; start < len(rows); start += rowBufferSize {
		end := start + rowBufferSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := writer.Write(rows[start:end]); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
		logrus.Debugf("wrote %d of %d rows to %s", end, len(rows), path)
	}
	return nil
}
