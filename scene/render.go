package scene

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"spheretrace/camera"
	"spheretrace/rendermetrics"
	"spheretrace/sampleimage"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type RenderOptions struct {
	// Bounces allowed per path.  Color uses MaxDepth.
	MaxDepth int

	// Samples wanted per pixel once the render completes.
	TargetSubsamples int

	// Base seed for the per-row generators.
	Seed int64

	// Rows rendered concurrently.  Zero means one per CPU.
	Workers int

	// Tag attached to recorded metrics.
	SceneName string

	// Optional.
	Metrics *rendermetrics.Recorder

	// Optional.  Receives the path statistics of every row rendered,
	// including rows finished before a cancellation.
	Totals *rendermetrics.PathStats
}

func (o *RenderOptions) Validate() error {
	if o.MaxDepth < 0 {
		return fmt.Errorf("max depth must be non-negative, got %d", o.MaxDepth)
	}
	if o.TargetSubsamples < 1 {
		return fmt.Errorf("target subsamples must be at least 1, got %d", o.TargetSubsamples)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

func (o *RenderOptions) workers() int {
	if o.Workers == 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// ProgressFunction receives the number of samples added so far and the
// number the render will add in total.
type ProgressFunction func(done, total int)

// rowSeed derives the generator seed for one row.  Mixing in the samples
// already present keeps a resumed render from repeating its earlier draws.
func rowSeed(seed, existingSamples int64, row int) int64 {
	const golden = 0x9E3779B97F4A7C15

	h := uint64(seed)
	h = h*golden + uint64(existingSamples)
	h = h*golden + uint64(row)
	h ^= h >> 31
	h *= golden
	h ^= h >> 29
	return int64(h)
}

// rowWorker fills one image row up to the target sample count.
type rowWorker struct {
	sampleDB *sampleimage.SampleImage
	rng      *rand.Rand
	stats    rendermetrics.PathStats

	maxDepth      int
	targetSamples int

	// These are the dimensions of the overall image, not just the row.
	imgRows int
	imgCols int

	row int

	scene *Scene
	cam   camera.Camera
}

func (w *rowWorker) Render() int {
	samplesCollected := 0
	for cc := 0; cc < w.sampleDB.ColSize; cc++ {
		samp := w.sampleDB.ReadSample(0, cc)
		if int(samp.ColorCount) >= w.targetSamples {
			continue
		}
		samplesToAdd := w.targetSamples - int(samp.ColorCount)

		for cs := 0; cs < samplesToAdd; cs++ {
			curQuery := w.cam.ImageToRay(w.row, w.imgRows, cc, w.imgCols, w.rng)
			w.stats.Rays++
			sampled := w.scene.trace(curQuery, 0, w.maxDepth, w.rng, &w.stats)
			w.sampleDB.RecordSample(0, cc, sampled)
			samplesCollected++
		}
	}
	return samplesCollected
}

// RenderScene adds samples to sampleDB until every pixel holds
// options.TargetSubsamples of them.  Pixels that already have enough are
// left alone, so an interrupted render can be resumed from its sample image.
//
// Rows are rendered concurrently.  When ctx is cancelled no new rows are
// started, finished rows are kept in sampleDB, and the context error is
// returned.
func RenderScene(ctx context.Context, sc *Scene, cam camera.Camera, options *RenderOptions, sampleDB *sampleimage.SampleImage, progressFunction ProgressFunction) error {
	tracer := otel.Tracer("spheretrace/scene")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "scene.RenderScene")
	defer span.End()

	span.SetAttributes(
		attribute.Int("rows", sampleDB.RowSize),
		attribute.Int("cols", sampleDB.ColSize),
		attribute.Int("target_subsamples", options.TargetSubsamples),
		attribute.Int("spheres", len(sc.Spheres)),
	)

	if err := options.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while validating render options: %w", err)
	}

	// Count the samples already recorded, so that a resumed render doesn't
	// repeat the same generator choices.
	existingSamples := sampleDB.TotalSamples()

	totalSamples := 0
	for i := range sampleDB.ColorCounts {
		if have := int(sampleDB.ColorCounts[i]); have < options.TargetSubsamples {
			totalSamples += options.TargetSubsamples - have
		}
	}

	glog.V(1).Infof("Rendering %dx%d image, %d existing samples, %d to add, %d workers", sampleDB.RowSize, sampleDB.ColSize, existingSamples, totalSamples, options.workers())

	curProgress := 0
	var totals rendermetrics.PathStats

	// progressMutex locks curProgress, totals, and sampleDB.
	progressMutex := sync.Mutex{}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(options.workers()))

	var stopErr error
	for row := 0; row < sampleDB.RowSize; row++ {
		row := row

		if err := egCtx.Err(); err != nil {
			stopErr = err
			break
		}
		if err := sem.Acquire(egCtx, 1); err != nil {
			stopErr = err
			break
		}

		progressMutex.Lock()
		worker := &rowWorker{
			sampleDB:      sampleDB.Cut(row, row+1, 0, sampleDB.ColSize),
			rng:           rand.New(rand.NewSource(rowSeed(options.Seed, existingSamples, row))),
			maxDepth:      options.MaxDepth,
			targetSamples: options.TargetSubsamples,
			imgRows:       sampleDB.RowSize,
			imgCols:       sampleDB.ColSize,
			row:           row,
			scene:         sc,
			cam:           cam,
		}
		progressMutex.Unlock()

		eg.Go(func() error {
			defer sem.Release(1)

			start := time.Now()
			collected := worker.Render()
			elapsed := time.Since(start)

			options.Metrics.RecordRow(egCtx, options.SceneName, worker.stats, elapsed)
			glog.V(2).Infof("Row %d: %d samples in %v", row, collected, elapsed)

			progressMutex.Lock()
			defer progressMutex.Unlock()

			sampleDB.Paste(worker.sampleDB, row, 0)
			totals.Add(worker.stats)
			curProgress += collected
			if progressFunction != nil {
				progressFunction(curProgress, totalSamples)
			}
			return nil
		})
	}

	waitErr := eg.Wait()

	glog.V(1).Infof("Rendered %d rays: %d bounces, %d escaped, %d absorbed, %d hit the depth limit", totals.Rays, totals.Bounces, totals.Escaped, totals.Absorbed, totals.DepthExhausted)
	span.SetAttributes(
		attribute.Int64("rays", totals.Rays),
		attribute.Int64("bounces", totals.Bounces),
	)
	if options.Totals != nil {
		options.Totals.Add(totals)
	}

	if err := waitErr; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	if stopErr != nil {
		span.SetStatus(codes.Error, stopErr.Error())
		return fmt.Errorf("while rendering rows: %w", stopErr)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RenderPixels renders a fresh rows x cols image and quantizes it.
func RenderPixels(ctx context.Context, sc *Scene, cam camera.Camera, rows, cols int, options *RenderOptions) (*sampleimage.PixelBuffer, error) {
	sampleDB := &sampleimage.SampleImage{Seed: options.Seed}
	sampleDB.Resize(rows, cols)

	if err := RenderScene(ctx, sc, cam, options, sampleDB, nil); err != nil {
		return nil, err
	}

	return sampleDB.ToPixels(), nil
}
