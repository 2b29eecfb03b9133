package samplesio

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// WriteLabelsCSV writes x,y,label rows for every sample in the matrix.
func WriteLabelsCSV(m *raster.SampleMatrix, labels []int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if _, err := f.WriteString("x,y,label\n"); err != nil {
		return err
	}

	for i := 0; i < m.Len(); i++ {
		if i%10000 == 0 {
			logrus.Debugf("Writing sample %d", i)
		}
		if _, err := f.WriteString(fmt.Sprintf("%v,%v,%d\n", m.X[i], m.Y[i], labels[i])); err != nil {
			return err
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	return nil
}
