// Package chart turns a statistic, a resolved option set and a display mode
// into renderable series bundles.
package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/i18n"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/options"
	"github.com/alfredjeanlab/worldchart/internal/transform"
)

// ErrUnknownMode is returned for a mode the pipeline has no branch for.
var ErrUnknownMode = errors.New("unknown chart mode")

// APINameAll is the upstream endpoint serving every statistic at once.
const APINameAll = "all"

// Fetcher is the memoizing data source the pipeline reads raw series from.
type Fetcher interface {
	Fetch(ctx context.Context, q model.Query) (*model.Payload, error)
}

type branch int

const (
	branchExpanded branch = iota
	branchLiveCompare
	branchSingle
)

func (b branch) String() string {
	switch b {
	case branchExpanded:
		return "expanded"
	case branchLiveCompare:
		return "live-compare"
	case branchSingle:
		return "single"
	}
	return fmt.Sprintf("branch(%d)", int(b))
}

// route picks the data path for an invocation.
func route(mode model.Mode, stat model.Statistic, typ model.ChartType) (branch, error) {
	switch mode {
	case model.ModeExpanded:
		return branchExpanded, nil
	case model.ModeCompact:
		if stat == model.StatConfirmed && typ == model.TypeLive {
			return branchLiveCompare, nil
		}
		return branchSingle, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// request is the input every branch receives.
type request struct {
	stat model.Statistic
	opts model.OptionSet
	live *model.LiveSnapshot
	t    i18n.Translator
}

type branchFunc func(ctx context.Context, req request) ([]model.SeriesBundle, error)

// Pipeline produces series bundles from cached raw data.
type Pipeline struct {
	fetcher  Fetcher
	branches map[branch]branchFunc
}

// NewPipeline returns a pipeline reading from f.
func NewPipeline(f Fetcher) *Pipeline {
	p := &Pipeline{fetcher: f}
	p.branches = map[branch]branchFunc{
		branchExpanded:    p.expanded,
		branchLiveCompare: p.liveCompare,
		branchSingle:      p.single,
	}
	return p
}

// GetChartData returns the bundles for stat rendered with opts in mode.
// opts must already be normalized against the statistic's option schema.
// live is the resident hourly snapshot and is only read by the live
// comparison path; it may be nil. Fetch errors are returned unmodified.
func (p *Pipeline) GetChartData(ctx context.Context, t i18n.Translator, stat model.Statistic, opts model.OptionSet, mode model.Mode, live *model.LiveSnapshot) ([]model.SeriesBundle, error) {
	b, err := route(mode, stat, opts.Type)
	if err != nil {
		return nil, err
	}
	return p.branches[b](ctx, request{stat: stat, opts: opts, live: live, t: t})
}

// expanded fetches one month of every statistic and emits one bundle per
// statistic. The axes are shared by all bundles.
func (p *Pipeline) expanded(ctx context.Context, req request) ([]model.SeriesBundle, error) {
	data, err := p.fetcher.Fetch(ctx, model.Query{
		Stats:        model.AllStatistics(),
		APIName:      APINameAll,
		Range:        model.RangeOneMonth,
		IsCompressed: true,
		IsSingle:     model.Bool(false),
	})
	if err != nil {
		return nil, err
	}

	xAxis := XAxis(req.opts)
	yAxis := YAxis(req.opts, string(req.stat))

	stats := data.Statistics()
	bundles := make([]model.SeriesBundle, 0, len(stats))
	for _, key := range stats {
		cfg := DefaultConfig(req.opts, ConfigOverrides{StatLabel: options.StatLabel(req.t, key)})
		bundles = append(bundles, model.SeriesBundle{
			DataSet: []model.DataSeries{
				Assemble(transform.Apply(data.ByStat[key], req.opts.Type, req.opts.Range), cfg),
			},
			XAxis: xAxis,
			YAxis: yAxis,
		})
	}
	return bundles, nil
}

// liveCompare overlays today's hourly series on a past reference point read
// from the resident snapshot. It never fetches. A compare key missing from
// the snapshot yields an empty reference series.
func (p *Pipeline) liveCompare(_ context.Context, req request) ([]model.SeriesBundle, error) {
	opts := model.OptionSet{Type: req.opts.Type, Range: req.opts.Range}
	showPoints := true

	compared := Assemble(req.live.Compared(req.opts.Compare), DefaultConfig(opts, ConfigOverrides{
		Color:        ColorMuted,
		TooltipLabel: options.CompareLabel(req.t, req.opts.Compare),
		ChartKind:    model.KindLine,
		ShowPoints:   &showPoints,
		Emphasis:     new(bool),
	}))
	today := Assemble(req.live.Today(), DefaultConfig(opts, ConfigOverrides{
		Color:        ColorPrimary,
		TooltipLabel: req.t.T("live.today"),
		ChartKind:    model.KindLine,
		ShowPoints:   &showPoints,
	}))

	return []model.SeriesBundle{{
		DataSet: []model.DataSeries{compared, today},
		XAxis:   XAxis(opts),
		YAxis:   YAxis(opts, string(req.stat)),
	}}, nil
}

// single fetches one statistic over the selected range.
func (p *Pipeline) single(ctx context.Context, req request) ([]model.SeriesBundle, error) {
	data, err := p.fetcher.Fetch(ctx, model.Query{
		Stats: []model.Statistic{req.stat},
		Range: req.opts.Range,
	})
	if err != nil {
		return nil, err
	}

	opts := model.OptionSet{Type: req.opts.Type, Range: req.opts.Range}
	return []model.SeriesBundle{{
		DataSet: []model.DataSeries{
			Assemble(transform.Apply(data.Single, opts.Type, opts.Range), DefaultConfig(opts, ConfigOverrides{})),
		},
		XAxis: XAxis(opts),
		YAxis: YAxis(opts, string(req.stat)),
	}}, nil
}
