package render

import (
	"reflect"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestColormapByName(t *testing.T) {
	if _, err := ColormapByName("RdBu"); err != nil {
		t.Errorf("lookup should be case-insensitive: %v", err)
	}
	if _, err := ColormapByName("jet"); err == nil {
		t.Error("unknown ramp: expected an error")
	}
}

func TestColormapNames(t *testing.T) {
	want := []string{"gray", "magma", "rdbu", "viridis"}
	if got := ColormapNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColormapClampsEnds(t *testing.T) {
	cm, err := ColormapByName("viridis")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := rgb(cm.At(-0.5)), rgb(cm.At(0)); got != want {
		t.Errorf("below the ramp: got %v, want %v", got, want)
	}
	if got, want := rgb(cm.At(1.5)), rgb(cm.At(1)); got != want {
		t.Errorf("above the ramp: got %v, want %v", got, want)
	}
}

func rgb(c colorful.Color) [3]uint8 {
	r, g, b := c.RGB255()
	return [3]uint8{r, g, b}
}
