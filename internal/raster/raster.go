// Package raster samples two-dimensional noise fields onto pixel grids.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/worker"
	"github.com/disintegration/gift"
	"github.com/paulmach/orb"
)

var (
	ErrInvalidSize   = errors.New("raster: width and height must be positive")
	ErrEmptyBounds   = errors.New("raster: sampling bounds must have positive width and height")
	ErrUnknownFormat = errors.New("raster: unknown image format")
)

// bandsPerWorker oversplits the rows so slow bands do not stall a worker.
const bandsPerWorker = 4

// Options configures how a field is sampled.
type Options struct {
	Width  int
	Height int
	// Bounds is the region of the plane mapped onto the image. Pixel (x, y)
	// samples Left+x·dx, Bottom+y·dy, so a Bounds spanning exactly one period
	// of a periodic field renders a seamless tile.
	Bounds orb.Bound
	// Blur is the sigma of a Gaussian blur applied by Render; 0 disables it.
	Blur    float32
	Workers int

	Logger     *slog.Logger
	OnProgress worker.ProgressFunc
}

// DefaultOptions returns a 256×256 grid over [0,8]×[0,8] using all CPUs.
func DefaultOptions() Options {
	return Options{
		Width:   256,
		Height:  256,
		Bounds:  orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{8, 8}},
		Workers: runtime.NumCPU(),
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidSize, o.Width, o.Height)
	}
	if !(o.Bounds.Right() > o.Bounds.Left()) || !(o.Bounds.Top() > o.Bounds.Bottom()) {
		return fmt.Errorf("%w: %v", ErrEmptyBounds, o.Bounds)
	}
	return nil
}

func (o Options) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Field is a sampled grid of values stored row-major.
type Field struct {
	Width  int
	Height int
	Values []float64
}

// At returns the sample at pixel (x, y).
func (f *Field) At(x, y int) float64 { return f.Values[y*f.Width+x] }

// Gray maps the field onto 8-bit gray levels: -1 becomes 0 and 1 becomes 255.
// Values outside [-1, 1] are clamped and NaN maps to 0.
func (f *Field) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range f.Values {
		img.Pix[i] = toGray(v)
	}
	return img
}

func toGray(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	g := math.Round((v + 1) * 127.5)
	return uint8(max(0, min(255, g)))
}

// Sample evaluates src at every pixel of the grid described by opts. Rows
// are split into bands and evaluated in parallel; the result does not depend
// on the worker count.
func Sample(ctx context.Context, src noise.Module2[float64], opts Options) (*Field, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	field := &Field{
		Width:  opts.Width,
		Height: opts.Height,
		Values: make([]float64, opts.Width*opts.Height),
	}

	left, bottom := opts.Bounds.Left(), opts.Bounds.Bottom()
	dx := (opts.Bounds.Right() - left) / float64(opts.Width)
	dy := (opts.Bounds.Top() - bottom) / float64(opts.Height)

	fill := worker.FillerFunc(func(ctx context.Context, band worker.Band) error {
		for y := band.Y0; y < band.Y1; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := field.Values[y*field.Width : (y+1)*field.Width]
			py := bottom + float64(y)*dy
			for x := range row {
				row[x] = src.Get2(noise.Point2[float64]{left + float64(x)*dx, py})
			}
		}
		return nil
	})

	workers := max(1, opts.Workers)
	bands := worker.Split(opts.Height, workers*bandsPerWorker)
	tasks := make([]worker.Task, len(bands))
	for i, b := range bands {
		tasks[i] = worker.Task{Band: b}
	}

	start := time.Now()
	pool := worker.New(worker.Config{
		Workers:    workers,
		Filler:     fill,
		OnProgress: opts.OnProgress,
	})
	results := pool.Run(ctx, tasks)
	if err := worker.FirstError(results); err != nil {
		return nil, fmt.Errorf("failed to sample field: %w", err)
	}

	opts.log().Debug("Sampled field",
		"width", opts.Width,
		"height", opts.Height,
		"bands", len(bands),
		"workers", workers,
		"elapsed", time.Since(start),
	)
	return field, nil
}

// Render samples src and converts it to a gray image, blurring it when
// opts.Blur is positive.
func Render(ctx context.Context, src noise.Module2[float64], opts Options) (*image.Gray, error) {
	field, err := Sample(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	img := field.Gray()
	if opts.Blur > 0 {
		img = GaussianBlur(img, opts.Blur)
		opts.log().Debug("Applied blur", "sigma", opts.Blur)
	}
	return img, nil
}

// GaussianBlur returns a blurred copy of img.
func GaussianBlur(img *image.Gray, sigma float32) *image.Gray {
	g := gift.New(gift.GaussianBlur(sigma))
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
