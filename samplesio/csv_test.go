package samplesio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteLabelsCSV(t *testing.T) {
	m := exportMatrix(t)
	path := filepath.Join(t.TempDir(), "labels.csv")

	if err := WriteLabelsCSV(m, []int{1, 3, 0}, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "x,y,label\n10,5,1\n20,5,3\n30,5,0\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", string(data), want)
	}
}
