// Package rendermetrics exports path tracing counters through opencensus.
package rendermetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var sceneKey = tag.MustNewKey("scene")

// PathStats counts what happened to the camera paths traced by one worker.
type PathStats struct {
	// Camera rays cast.
	Rays int64

	// Scattering events that produced a follow-up ray.
	Bounces int64

	// Paths ended by a material absorbing them.
	Absorbed int64

	// Paths that left the scene and picked up the background.
	Escaped int64

	// Paths cut off by the depth limit.
	DepthExhausted int64
}

func (p *PathStats) Add(o PathStats) {
	p.Rays += o.Rays
	p.Bounces += o.Bounces
	p.Absorbed += o.Absorbed
	p.Escaped += o.Escaped
	p.DepthExhausted += o.DepthExhausted
}

type Recorder struct {
	rays           *stats.Int64Measure
	bounces        *stats.Int64Measure
	absorbed       *stats.Int64Measure
	escaped        *stats.Int64Measure
	depthExhausted *stats.Int64Measure
	rowLatency     *stats.Float64Measure

	views []*view.View
}

func New() *Recorder {
	r := &Recorder{}

	r.rays = stats.Int64("spheretrace/rays", "Camera rays cast", stats.UnitDimensionless)
	r.bounces = stats.Int64("spheretrace/bounces", "Scattering events", stats.UnitDimensionless)
	r.absorbed = stats.Int64("spheretrace/absorbed_paths", "Paths absorbed by a material", stats.UnitDimensionless)
	r.escaped = stats.Int64("spheretrace/escaped_paths", "Paths that reached the background", stats.UnitDimensionless)
	r.depthExhausted = stats.Int64("spheretrace/depth_exhausted_paths", "Paths cut off by the depth limit", stats.UnitDimensionless)
	r.rowLatency = stats.Float64("spheretrace/row_latency", "Wall time to render one image row", stats.UnitMilliseconds)

	for _, m := range []*stats.Int64Measure{r.rays, r.bounces, r.absorbed, r.escaped, r.depthExhausted} {
		r.views = append(r.views, &view.View{
			Name:        m.Name(),
			Description: m.Description(),
			TagKeys:     []tag.Key{sceneKey},
			Measure:     m,
			Aggregation: view.Sum(),
		})
	}

	r.views = append(r.views, &view.View{
		Name:        r.rowLatency.Name(),
		Description: r.rowLatency.Description(),
		TagKeys:     []tag.Key{sceneKey},
		Measure:     r.rowLatency,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000),
	})

	return r
}

func (r *Recorder) RegisterViews() error {
	if err := view.Register(r.views...); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}
	return nil
}

func (r *Recorder) UnregisterViews() {
	view.Unregister(r.views...)
}

// RecordRow records the paths traced for one image row.  A nil Recorder
// discards them.
func (r *Recorder) RecordRow(ctx context.Context, sceneName string, ps PathStats, elapsed time.Duration) {
	if r == nil {
		return
	}

	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Upsert(sceneKey, sceneName)),
		stats.WithMeasurements(
			r.rays.M(ps.Rays),
			r.bounces.M(ps.Bounces),
			r.absorbed.M(ps.Absorbed),
			r.escaped.M(ps.Escaped),
			r.depthExhausted.M(ps.DepthExhausted),
			r.rowLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
}
