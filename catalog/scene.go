package catalog

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

// LoadScene materializes the requested bands of a scene as one multiband
// raster carrying the item's reference system. Each band asset downloads
// into dir unless a copy is already there; progress, when non-nil, is called
// once per band.
func (c *Client) LoadScene(it Item, bands []string, dir string, progress func()) (*raster.Raster, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("scene %s: no bands requested", it.ID)
	}
	singles := make([]*raster.Raster, len(bands))
	for i, name := range bands {
		asset, ok := it.BandAsset(name)
		if !ok {
			return nil, fmt.Errorf("scene %s has no asset for band %q", it.ID, name)
		}
		local, err := c.fetchAsset(asset.Href, dir)
		if err != nil {
			return nil, fmt.Errorf("scene %s band %q: %w", it.ID, name, err)
		}
		r, err := ReadGeoTIFF(local, []string{name}, it.Properties.EPSG)
		if err != nil {
			return nil, fmt.Errorf("scene %s band %q: %w", it.ID, name, err)
		}
		singles[i] = r
		if progress != nil {
			progress()
		}
	}
	combined, err := raster.Combine(bands, singles)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", it.ID, err)
	}
	combined.Attrs = map[string]string{
		"id":       it.ID,
		"datetime": it.Properties.Datetime,
		"platform": it.Properties.Platform,
	}
	return combined, nil
}

// fetchAsset resolves an asset href to a local file, downloading it into dir
// when it is a URL and not already cached there. Plain paths pass through.
func (c *Client) fetchAsset(href, dir string) (string, error) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme == "" {
		return href, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	local := filepath.Join(dir, path.Base(u.Path))
	if _, err := os.Stat(local); err == nil {
		logrus.Debugf("using cached %s", local)
		return local, nil
	}

	logrus.Infof("downloading %s", href)
	resp, err := c.HTTP.Get(href)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", href, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", href, resp.StatusCode)
	}

	f, err := os.Create(local)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(local)
		return "", fmt.Errorf("download %s: %w", href, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return local, nil
}
