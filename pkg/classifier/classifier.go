// Package classifier labels electrode contacts with the anatomical zones
// found in an atlas neighborhood around each of them.
package classifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brainzone/internal/models"
	"brainzone/pkg/coords"
	"brainzone/pkg/neighborhood"
	"brainzone/pkg/zones"
)

// PointSet is the host's list of contact points.
type PointSet interface {
	Count() int
	IsSelected(i int) bool
	Position(i int) [3]float64
	AppendDescription(i int, text string)
}

// Labeled is implemented by point sets whose points carry a display
// label. Reports name points by it.
type Labeled interface {
	Label(i int) string
}

func pointLabel(points PointSet, i int) string {
	if l, ok := points.(Labeled); ok {
		return l.Label(i)
	}
	return ""
}

// Volume is the host's labelled atlas.
type Volume interface {
	neighborhood.Volume

	// PhysicalToIndex returns the row-major 4x4 physical-to-voxel matrix
	PhysicalToIndex() [16]float64
}

// Params controls a classification run.
type Params struct {
	// SideLength is the edge of the cube the sampling ball is inscribed in
	SideLength int

	// Workers is the number of points classified concurrently; values
	// below 2 process points one after the other
	Workers int

	// Progress, when set, is called after each point with the number of
	// points handled so far
	Progress func(done, total int)
}

// Classifier runs zone classification over point sets.
type Classifier struct {
	res    *Resources
	params Params
}

// NewClassifier creates a classifier bound to loaded resources.
func NewClassifier(res *Resources, params Params) *Classifier {
	return &Classifier{res: res, params: params}
}

// ClassifyPoint computes the zone breakdown around one physical
// position. It has no side effects.
func ClassifyPoint(pos [3]float64, vol neighborhood.Volume, mapper *coords.Mapper, res *Resources, sideLength int) (*models.Breakdown, error) {
	outcome := classify(pos, vol, mapper, res, sideLength)
	return outcome.Breakdown, outcome.Err
}

// classify walks one point from Pending to Aggregated or Failed.
func classify(pos [3]float64, vol neighborhood.Volume, mapper *coords.Mapper, res *Resources, sideLength int) models.Outcome {
	out := models.Outcome{State: models.StatePending}

	center := mapper.ToIndex(pos)
	codes, err := neighborhood.Sample(vol, center, sideLength)
	if err != nil {
		return fail(out, err)
	}
	out.State = models.StateSampled

	var resolver zones.Resolver
	if res.Names != nil {
		resolver = res.Names
	}
	b, err := zones.Aggregate(codes, res.LUT, resolver)
	if err != nil {
		return fail(out, err)
	}
	out.State = models.StateAggregated
	out.Breakdown = b

	return out
}

func fail(out models.Outcome, err error) models.Outcome {
	out.Stage = out.State
	out.State = models.StateFailed
	out.Err = err
	return out
}

// Format renders a breakdown as "<label>,<percent>" pairs joined by
// commas, then a space and the PTD score with two decimals:
//
//	precentral,71,Hippocampus,29 PTD,1.00
func Format(b *models.Breakdown) string {
	pairs := make([]string, 0, len(b.Zones))
	for _, z := range b.Zones {
		pairs = append(pairs, z.Label+","+strconv.Itoa(z.Percent))
	}
	return strings.Join(pairs, ",") + " " + fmt.Sprintf("PTD,%.2f", b.PTD)
}

// Run classifies every selected point of points and appends the result
// to its description. Points that fail are reported and skipped; the
// returned error is non-nil only when ctx is cancelled, in which case
// the report covers the points handled before cancellation.
func (c *Classifier) Run(ctx context.Context, points PointSet, vol Volume) (*Report, error) {
	mapper := coords.NewMapper(vol.PhysicalToIndex())
	total := points.Count()
	report := &Report{Total: total}

	zap.L().Info("classifier: starting run",
		zap.Int("points", total),
		zap.Int("side_length", c.params.SideLength),
		zap.Int("radius", neighborhood.Radius(c.params.SideLength)),
		zap.Int("workers", c.params.Workers),
	)

	var err error
	if c.params.Workers > 1 {
		err = c.runParallel(ctx, points, vol, mapper, report)
	} else {
		err = c.runSequential(ctx, points, vol, mapper, report)
	}

	zap.L().Info("classifier: run finished",
		zap.Int("annotated", report.Count(models.StateAnnotated)),
		zap.Int("failed", report.Count(models.StateFailed)),
		zap.Int("skipped", report.Count(models.StateSkipped)),
	)

	return report, err
}

func (c *Classifier) runSequential(ctx context.Context, points PointSet, vol Volume, mapper *coords.Mapper, report *Report) error {
	total := points.Count()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "classifier: stopped after %d of %d points", i, total)
		}

		var out models.Outcome
		if points.IsSelected(i) {
			out = classify(points.Position(i), vol, mapper, c.res, c.params.SideLength)
		} else {
			out = models.Outcome{State: models.StateSkipped}
		}
		out.Index = i
		out.Label = pointLabel(points, i)

		c.finish(points, &out)
		report.add(out)
		c.progress(i+1, total)
	}
	return nil
}

// runParallel computes breakdowns concurrently. Positions are read and
// descriptions written only from the calling goroutine, in point order,
// so every description still has exactly one writer.
func (c *Classifier) runParallel(ctx context.Context, points PointSet, vol Volume, mapper *coords.Mapper, report *Report) error {
	total := points.Count()

	outcomes := make([]models.Outcome, total)
	done := make([]bool, total)
	positions := make([][3]float64, total)
	skipped := 0
	for i := 0; i < total; i++ {
		outcomes[i].Index = i
		outcomes[i].Label = pointLabel(points, i)
		if points.IsSelected(i) {
			positions[i] = points.Position(i)
		} else {
			outcomes[i].State = models.StateSkipped
			skipped++
		}
	}

	// skipped points count as handled so progress ends at total
	var mu sync.Mutex
	handled := skipped
	if skipped > 0 {
		c.progress(handled, total)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.params.Workers)
	for i := 0; i < total; i++ {
		if outcomes[i].State == models.StateSkipped {
			done[i] = true
			continue
		}
		i, label := i, outcomes[i].Label
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := classify(positions[i], vol, mapper, c.res, c.params.SideLength)
			out.Index = i
			out.Label = label

			mu.Lock()
			defer mu.Unlock()
			outcomes[i] = out
			done[i] = true
			handled++
			c.progress(handled, total)
			return nil
		})
	}
	err := g.Wait()

	for i := range outcomes {
		if !done[i] {
			continue
		}
		c.finish(points, &outcomes[i])
		report.add(outcomes[i])
	}

	if err != nil {
		return eris.Wrapf(err, "classifier: stopped after %d of %d points", len(report.Outcomes), total)
	}
	return nil
}

// finish annotates an aggregated point and logs failures.
func (c *Classifier) finish(points PointSet, out *models.Outcome) {
	switch out.State {
	case models.StateAggregated:
		out.Annotation = Format(out.Breakdown)
		points.AppendDescription(out.Index, " "+out.Annotation)
		out.State = models.StateAnnotated
		zap.L().Debug("classifier: point annotated",
			zap.Int("point", out.Index),
			zap.String("zones", out.Annotation),
		)
	case models.StateFailed:
		fields := []zap.Field{
			zap.Int("point", out.Index),
			zap.String("label", out.Label),
			zap.String("reason", out.Reason()),
			zap.String("stage", out.Stage.String()),
			zap.Error(out.Err),
		}
		if eris.Is(out.Err, models.ErrUnknownLabel) {
			zap.L().Error("classifier: atlas code missing from lookup table, check the lookup table variant", fields...)
		} else {
			zap.L().Warn("classifier: point failed", fields...)
		}
	}
}

func (c *Classifier) progress(done, total int) {
	if c.params.Progress != nil {
		c.params.Progress(done, total)
	}
}
