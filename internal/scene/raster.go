package scene

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	// Registers the PNG decoder for LoadRaster.
	_ "image/png"

	"golang.org/x/image/draw"
)

// DefaultRasterCells is the side length of the sampling grid used when
// turning a raster into an image group.
const DefaultRasterCells = 16

// ImageGroupFromRaster samples img on a cells x cells grid and returns an
// image group whose colormap holds the distinct sampled colors in row-major
// order of first appearance.
//
// Nearest-neighbour scaling is used so that sampled colors are colors that
// actually occur in the raster, never blends of neighbours.
func ImageGroupFromRaster(label string, img image.Image, cells int) ArtifactGroup {
	if cells <= 0 {
		cells = DefaultRasterCells
	}
	src := img.Bounds()
	w, h := cells, cells
	if src.Dx() < w {
		w = src.Dx()
	}
	if src.Dy() < h {
		h = src.Dy()
	}

	group := ArtifactGroup{Kind: KindImage, Label: label}
	if w <= 0 || h <= 0 {
		return group
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	seen := make(map[color.NRGBA]bool)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := dst.NRGBAAt(x, y)
			if seen[c] {
				continue
			}
			seen[c] = true
			group.Colormap = append(group.Colormap, c)
		}
	}
	return group
}

// LoadRaster decodes an image file (PNG) and samples it into an image group.
func LoadRaster(path, label string, cells int) (ArtifactGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArtifactGroup{}, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return ArtifactGroup{}, fmt.Errorf("failed to decode raster %s: %w", path, err)
	}
	return ImageGroupFromRaster(label, img, cells), nil
}

// ResolveRasters samples every image group that names a raster file and has
// no explicit colormap. Relative paths are resolved against baseDir. It is
// meant to run while a fixture is being built, before the figure is handed
// to the verification engine.
func (f *Figure) ResolveRasters(baseDir string, cells int) error {
	for i := range f.Plots {
		groups := f.Plots[i].Groups
		for j := range groups {
			g := &groups[j]
			if g.Kind != KindImage || g.Raster == "" || len(g.Colormap) > 0 {
				continue
			}
			path := g.Raster
			if !filepath.IsAbs(path) && baseDir != "" {
				path = filepath.Join(baseDir, path)
			}
			sampled, err := LoadRaster(path, g.Label, cells)
			if err != nil {
				return fmt.Errorf("subplot %s: %w", f.Plots[i].ID, err)
			}
			g.Colormap = sampled.Colormap
		}
	}
	return nil
}
