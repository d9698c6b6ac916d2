package plasmafilter

import "go.uber.org/zap"

const mmPerInch = 25.4

// Settings carries the parameter-source values sampled once at startup.
// All distances are already normalized to millimeters by the caller.
type Settings struct {
	HoleDetectEnabled bool
	ThicknessRatio    float64
	MaxHoleSize       float64

	Arc1FeedPercent float64 // fraction, e.g. 0.6 for 60%
	Arc2FeedPercent float64
	Arc3FeedPercent float64
	Arc2Distance    float64
	Arc3Distance    float64

	LeadinFeedPercent float64
	LeadinRadius      float64

	KerfWidth        float64
	TorchOffDistance float64

	SmallHoleDetect    bool
	SmallHoleThreshold float64

	MarkVoltageThreshold float64
	MarkDelay            float64

	DebugComments bool
}

// RunContext is the explicit run state shared across the passes: the
// unit system fixed at startup, the sampled settings, the process
// database, and the active process set by tool-change resolution. One
// invocation processes one file with one unit system.
type RunContext struct {
	// UnitsPerMM is 1 for a metric run and 25.4 for imperial. The
	// classifier still mutates it on mid-file G20/G21, matching the
	// historical behavior, but Precision is fixed for the whole run.
	UnitsPerMM float64

	// Precision is the output decimal precision for generated
	// coordinates: 4 for metric, 6 for imperial.
	Precision int

	Settings      Settings
	Processes     ProcessSource
	ActiveProcess *CutProcess

	log *zap.Logger
}

// NewRunContext builds a run context. imperial selects inch units and
// 6-digit output precision; log may be nil.
func NewRunContext(imperial bool, settings Settings, processes ProcessSource, log *zap.Logger) *RunContext {
	ctx := &RunContext{
		UnitsPerMM: 1,
		Precision:  4,
		Settings:   settings,
		Processes:  processes,
		log:        log,
	}
	if imperial {
		ctx.UnitsPerMM = mmPerInch
		ctx.Precision = 6
	}
	if ctx.log == nil {
		ctx.log = zap.NewNop()
	}
	return ctx
}

// ActiveFeedRate returns the active process cut speed, or 0 when no
// tool change has resolved yet.
func (ctx *RunContext) ActiveFeedRate() float64 {
	if ctx.ActiveProcess == nil {
		return 0
	}
	return ctx.ActiveProcess.CutSpeed
}
