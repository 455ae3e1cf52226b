// renderer ray traces a scene of spheres into a PNG or PPM image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"spheretrace/rendermetrics"
	"spheretrace/sampleimage"
	"spheretrace/scene"
	"spheretrace/scenepack"
	"spheretrace/vmath/vec3"

	"cloud.google.com/go/profiler"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"
)

var (
	outputFile             = flag.String("output-file", "output.png", "Image to write.  The extension picks the format (.png or .ppm); gs://bucket/object uploads to Cloud Storage.")
	outputRows             = flag.Int("output-rows", 100, "Image height in pixels.")
	outputCols             = flag.Int("output-cols", 200, "Image width in pixels.")
	renderTargetSubsamples = flag.Int("render-target-subsamples", 100, "Samples per pixel.")
	renderMaxDepth         = flag.Int("render-max-depth", scene.MaxDepth, "Bounces allowed per path.")
	seed                   = flag.Int64("seed", 0, "Random seed.  Ignored when resuming.")
	workers                = flag.Int("workers", 0, "Rows rendered concurrently.  0 means one per CPU.")
	sceneFile              = flag.String("scene-file", "", "Scene description in protobuf text format.  Overrides --scene.")
	sceneName              = flag.String("scene", "random", "Builtin scene to render when --scene-file is unset.")
	spherePos              = flag.String("sphere-pos", "0,1,0", "x,y,z position of the glass sphere in the builtin random scenes.")
	resume                 = flag.Bool("resume", false, "Continue the render stored in --samples-file.")
	samplesFile            = flag.String("samples-file", "", "Where to keep raw samples so that the render can be resumed.")
	cpuprofile             = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile             = flag.String("mem-profile", "", "write memory profile to `file`")
	monitoring             = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject      = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio   = flag.Float64("monitoring-trace-ratio", 1, "What ratio of traces should be exported?")
	enableProfiling        = flag.Bool("enable-profiling", false, "Enable Cloud Profiler.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	flag.VisitAll(func(f *flag.Flag) {
		glog.Infof("%s: %q", f.Name, f.Value.String())
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		glog.Infof("Received %v; stopping after in-flight rows", sig)
		cancel()
	}()

	if *enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "spheretrace-renderer",
			ServiceVersion: "0.0.1",
			ProjectID:      *monitoringProject,
		}); err != nil {
			glog.Exitf("Error initializing profiler: %v", err)
		}
	}

	if *monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(*monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Exitf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
		}
		defer traceShutdown()

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			glog.Exitf("Failed to install Cloud Metrics OpenTelemetry meter pipeline: %v", err)
		}
		defer pusher.Stop(context.Background())

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "spheretrace",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			glog.Exitf("Error initializing metrics exporter: %v", err)
		}
		exporter.StartMetricsExporter()
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Exitf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Exitf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(ctx); err != nil {
		// Exitf skips deferred calls.
		pprof.StopCPUProfile()
		glog.Exitf("Error: %v", err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Exitf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Exitf("Could not write memory profile: %v", err)
		}
	}
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (vec3.T, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vec3.T{}, fmt.Errorf("want three comma-separated numbers, got %q", s)
	}

	var v vec3.T
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vec3.T{}, fmt.Errorf("while parsing component %d of %q: %w", i, s, err)
		}
		v[i] = f
	}
	return v, nil
}

func loadPack(rng *rand.Rand) (*scenepack.Pack, string, error) {
	if *sceneFile != "" {
		p, err := scenepack.LoadScene(*sceneFile)
		if err != nil {
			return nil, "", fmt.Errorf("while loading scene file: %w", err)
		}
		return p, *sceneFile, nil
	}

	pos, err := parseVec3(*spherePos)
	if err != nil {
		return nil, "", fmt.Errorf("while parsing --sphere-pos: %w", err)
	}
	p, err := scenepack.Builtin(*sceneName, rng, pos)
	if err != nil {
		return nil, "", err
	}
	return p, *sceneName, nil
}

// openSampleDB loads the samples of an earlier render or makes a fresh
// sample image.
func openSampleDB() (*sampleimage.SampleImage, error) {
	if *resume {
		if *samplesFile == "" {
			return nil, fmt.Errorf("resumption requested, but --samples-file is not set")
		}

		sampleDB, err := sampleimage.ReadSampleImageFromFile(*samplesFile)
		if err != nil {
			return nil, fmt.Errorf("resumption requested, but encountered error loading existing file: %w", err)
		}

		if sampleDB.RowSize != *outputRows {
			return nil, fmt.Errorf("resumption requested, but the existing sample image doesn't have the right number of rows (got %d, want %d)", sampleDB.RowSize, *outputRows)
		}

		if sampleDB.ColSize != *outputCols {
			return nil, fmt.Errorf("resumption requested, but the existing sample image doesn't have the right number of columns (got %d, want %d)", sampleDB.ColSize, *outputCols)
		}

		return sampleDB, nil
	}

	if *samplesFile != "" {
		// Check that the samples file doesn't exist, to avoid blowing away
		// hours of render time.
		if _, err := os.Stat(*samplesFile); err == nil {
			return nil, fmt.Errorf("resumption not requested, but samples file %q exists", *samplesFile)
		}
	}

	sampleDB := &sampleimage.SampleImage{Seed: *seed}
	sampleDB.Resize(*outputRows, *outputCols)
	return sampleDB, nil
}

func do(ctx context.Context) error {
	if *outputRows <= 0 || *outputCols <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", *outputRows, *outputCols)
	}

	sampleDB, err := openSampleDB()
	if err != nil {
		return err
	}

	// The grid scene draws its layout from the render seed, so a resumed
	// render rebuilds the same scene.
	pack, name, err := loadPack(rand.New(rand.NewSource(sampleDB.Seed)))
	if err != nil {
		return err
	}

	if err := pack.Scene.Validate(); err != nil {
		return fmt.Errorf("while validating scene: %w", err)
	}

	cam, err := pack.Camera(float64(*outputCols) / float64(*outputRows))
	if err != nil {
		return err
	}

	metrics := rendermetrics.New()
	if err := metrics.RegisterViews(); err != nil {
		return err
	}
	defer metrics.UnregisterViews()

	totals := &rendermetrics.PathStats{}
	options := &scene.RenderOptions{
		MaxDepth:         *renderMaxDepth,
		TargetSubsamples: *renderTargetSubsamples,
		Seed:             sampleDB.Seed,
		Workers:          *workers,
		SceneName:        name,
		Metrics:          metrics,
		Totals:           totals,
	}
	if err := options.Validate(); err != nil {
		return err
	}

	glog.Infof("Rendering scene %q: %d spheres, %dx%d, %d samples per pixel", name, len(pack.Scene.Spheres), *outputCols, *outputRows, *renderTargetSubsamples)

	progress := newProgressReporter(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), 10*time.Second)

	start := time.Now()
	renderErr := scene.RenderScene(ctx, pack.Scene, cam, options, sampleDB, progress.Update)
	progress.Done()

	if *samplesFile != "" {
		if err := sampleimage.WriteSampleImageToFile(sampleDB, *samplesFile); err != nil {
			return fmt.Errorf("while writing sample image: %w", err)
		}
		glog.Infof("Wrote samples to %s", *samplesFile)
	}

	if renderErr != nil {
		if errors.Is(renderErr, context.Canceled) && *samplesFile != "" {
			return fmt.Errorf("render interrupted; continue it with --resume: %w", renderErr)
		}
		return fmt.Errorf("while rendering: %w", renderErr)
	}

	glog.Infof("Rendered in %v: %d rays, %d bounces", time.Since(start), totals.Rays, totals.Bounces)

	if err := writeOutput(ctx, *outputFile, sampleDB.ToPixels()); err != nil {
		return fmt.Errorf("while writing output: %w", err)
	}
	glog.Infof("Wrote %s", *outputFile)

	return nil
}
