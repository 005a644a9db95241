package atlas

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"brainzone/internal/models"
)

// LoadSlices builds a volume from a directory of grayscale PNG label
// slices. Each file is one k plane; pixel (x, y) is voxel (i, j) and the
// gray value is the label code. Slices are ordered by the number
// embedded in their filename.
func LoadSlices(dir string, transform [16]float64) (*Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "atlas: read %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) == ".png" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, eris.Wrapf(models.ErrConfiguration, "atlas: no PNG slices in %s", dir)
	}

	// Slice order must follow the acquisition order, which the filename
	// number encodes; plain lexical order puts slice_10 before slice_2.
	sort.SliceStable(files, func(a, b int) bool {
		return sliceNumber(files[a]) < sliceNumber(files[b])
	})

	var vol *Volume
	for k, name := range files {
		img, err := loadSlice(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		bounds := img.Bounds()
		if vol == nil {
			vol, err = New(bounds.Dx(), bounds.Dy(), len(files))
			if err != nil {
				return nil, err
			}
			vol.Transform = transform
		} else if bounds.Dx() != vol.Width || bounds.Dy() != vol.Height {
			return nil, eris.Wrapf(models.ErrConfiguration,
				"atlas: slice %s is %dx%d, expected %dx%d", name, bounds.Dx(), bounds.Dy(), vol.Width, vol.Height)
		}

		if err := copyPlane(vol, img, k); err != nil {
			return nil, eris.Wrapf(err, "atlas: slice %s", name)
		}
	}

	zap.L().Debug("atlas: loaded label slices",
		zap.String("dir", dir),
		zap.Int("width", vol.Width),
		zap.Int("height", vol.Height),
		zap.Int("depth", vol.Depth),
	)

	return vol, nil
}

// SaveSlices writes the volume as one 16-bit grayscale PNG per k plane,
// named slice_<k>.png, in the layout LoadSlices reads.
func SaveSlices(vol *Volume, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return eris.Wrapf(err, "atlas: create %s", dir)
	}

	for k := 0; k < vol.Depth; k++ {
		img := image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
		for j := 0; j < vol.Height; j++ {
			for i := 0; i < vol.Width; i++ {
				code := vol.Sample(i, j, k)
				if code < 0 || code > 0xFFFF {
					return eris.Errorf("atlas: code %d at (%d,%d,%d) does not fit a 16-bit slice", code, i, j, k)
				}
				img.SetGray16(i, j, color.Gray16{Y: uint16(code)})
			}
		}

		path := filepath.Join(dir, "slice_"+strconv.Itoa(k)+".png")
		if err := writePNG(path, img); err != nil {
			return err
		}
	}

	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "atlas: create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return eris.Wrapf(err, "atlas: encode %s", path)
	}
	return f.Close()
}

func loadSlice(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "atlas: open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "atlas: decode %s: %v", path, err)
	}
	return img, nil
}

// copyPlane stores the gray values of img as plane k. Only grayscale
// images are accepted: converting color pixels would invent codes.
func copyPlane(vol *Volume, img image.Image, k int) error {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				vol.Set(x-b.Min.X, y-b.Min.Y, k, int(src.Gray16At(x, y).Y))
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				vol.Set(x-b.Min.X, y-b.Min.Y, k, int(src.GrayAt(x, y).Y))
			}
		}
	default:
		return eris.Wrapf(models.ErrConfiguration, "unsupported pixel format %T", img)
	}
	return nil
}

// sliceNumber extracts the digits of a filename as an integer, 0 when
// there are none.
func sliceNumber(filename string) int {
	base := filepath.Base(filename)
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	if digits.Len() > 0 {
		if n, err := strconv.Atoi(digits.String()); err == nil {
			return n
		}
	}
	return 0
}
