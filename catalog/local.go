package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// Source is one entry in a local catalog file: a named dataset with the
// driver that materializes it.
type Source struct {
	Driver      string     `yaml:"driver"`
	Description string     `yaml:"description,omitempty"`
	Args        SourceArgs `yaml:"args"`
}

// SourceArgs points a driver at its file. Bands overrides the band naming
// for drivers that do not carry names themselves, and EPSG supplies the
// reference system when the file has none.
type SourceArgs struct {
	URLPath string   `yaml:"urlpath"`
	Bands   []string `yaml:"bands,omitempty"`
	EPSG    int      `yaml:"epsg,omitempty"`
}

type localFile struct {
	Sources  map[string]Source `yaml:"sources"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// Local is a parsed local catalog. Relative source paths resolve against the
// catalog file's directory.
type Local struct {
	dir     string
	sources map[string]Source
}

// WriteLocal writes a local catalog file declaring the given sources, the
// counterpart of OpenLocal.
func WriteLocal(path string, sources map[string]Source, metadata map[string]string) error {
	if len(sources) == 0 {
		return fmt.Errorf("catalog: no sources to write")
	}
	data, err := yaml.Marshal(&localFile{Sources: sources, Metadata: metadata})
	if err != nil {
		return fmt.Errorf("error encoding catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing catalog file: %w", err)
	}
	return nil
}

// OpenLocal reads and parses a local catalog YAML file.
func OpenLocal(path string) (*Local, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	var lf localFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %w", err)
	}
	if len(lf.Sources) == 0 {
		return nil, fmt.Errorf("catalog %s declares no sources", path)
	}
	for name, src := range lf.Sources {
		if src.Args.URLPath == "" {
			return nil, fmt.Errorf("catalog source %q has no urlpath", name)
		}
	}
	return &Local{dir: filepath.Dir(path), sources: lf.Sources}, nil
}

// Names lists the catalog's dataset names in sorted order.
func (l *Local) Names() []string {
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the catalog entry for name.
func (l *Local) Source(name string) (Source, bool) {
	src, ok := l.sources[name]
	return src, ok
}

// Load materializes the named dataset through its driver.
func (l *Local) Load(name string) (*raster.Raster, error) {
	src, ok := l.sources[name]
	if !ok {
		return nil, fmt.Errorf("catalog has no source %q", name)
	}
	path := src.Args.URLPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	switch src.Driver {
	case "geotiff":
		return ReadGeoTIFF(path, src.Args.Bands, src.Args.EPSG)
	case "snp":
		return ReadSNP(path)
	default:
		return nil, fmt.Errorf("catalog source %q has unknown driver %q", name, src.Driver)
	}
}
