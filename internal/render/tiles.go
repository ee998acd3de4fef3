package render

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

// DefaultTileSize is the edge of a square tile in pixels.
const DefaultTileSize = 256

// TileQuality is the default WebP quality of written tiles.
const TileQuality = 85

// Tiles scales src to a 2^z grid of tiles for every zoom level up to
// zoomLimit and writes them to baseDir/z/x/y.webp. A non-square src is
// centered on a transparent square first so its aspect ratio is kept.
// Existing non-empty tiles are kept unless force is set. A quality of zero
// or less means TileQuality. The first write error is returned after every
// level has been attempted.
func Tiles(src image.Image, baseDir string, zoomLimit, tileSize int, quality float32, force bool) error {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if quality <= 0 {
		quality = TileQuality
	}
	square := letterbox(src)

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for z := 0; z <= zoomLimit; z++ {
		gridSize := 1 << z
		totalPixels := gridSize * tileSize

		log.Debug().
			Int("zoom", z).
			Int("grid", gridSize).
			Int("px", totalPixels).
			Msg("Processing zoom level")

		// Always scale from the source so quality does not degrade per level
		dst := image.NewRGBA(image.Rect(0, 0, totalPixels, totalPixels))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), square, square.Bounds(), draw.Over, nil)

		var wg sync.WaitGroup
		sem := make(chan struct{}, 20)

		for x := 0; x < gridSize; x++ {
			for y := 0; y < gridSize; y++ {
				wg.Add(1)
				sem <- struct{}{}

				go func(zx, zy int) {
					defer wg.Done()
					defer func() { <-sem }()

					rect := image.Rect(zx*tileSize, zy*tileSize, (zx+1)*tileSize, (zy+1)*tileSize)
					if err := writeTile(TilePath(baseDir, z, zx, zy), dst.SubImage(rect), quality, force); err != nil {
						log.Error().Err(err).Int("zoom", z).Int("x", zx).Int("y", zy).Msg("Failed to write tile")
						fail(err)
					}
				}(x, y)
			}
		}
		wg.Wait()
	}

	return firstErr
}

// letterbox centers src on a transparent square with the side of its
// longer edge.
func letterbox(src image.Image) image.Image {
	b := src.Bounds()
	if b.Dx() == b.Dy() {
		return src
	}

	side := max(b.Dx(), b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	offset := image.Pt((side-b.Dx())/2, (side-b.Dy())/2)
	draw.Draw(dst, b.Sub(b.Min).Add(offset), src, b.Min, draw.Src)
	return dst
}

// TilePath returns baseDir/z/x/y.webp.
func TilePath(baseDir string, z, x, y int) string {
	return filepath.Join(baseDir, strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y)+".webp")
}

func writeTile(path string, img image.Image, quality float32, force bool) error {
	if !force {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create tile dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return fmt.Errorf("encode tile: %w", err)
	}
	return nil
}
