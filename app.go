package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/carton/pkg/animate"
	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/config"
	"github.com/chazu/carton/pkg/engine"
	"github.com/chazu/carton/pkg/export"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/kernel"
	"github.com/chazu/carton/pkg/kernel/sdfx"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/render"
	"github.com/chazu/carton/pkg/shape"
	"github.com/chazu/carton/pkg/tessellate"
	"github.com/chazu/carton/pkg/texture"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// App ties the designer together: scripts, assemblies, textures and
// exports. The CLI and the HTTP server both drive it.
type App struct {
	cfg    config.Config
	log    zerolog.Logger
	engine *engine.Engine
	kernel kernel.Kernel
	loader texture.Loader
}

// Option configures an App.
type Option func(*App)

// WithLoader replaces the texture loader. The server passes one that only
// accepts uploads and presets.
func WithLoader(l texture.Loader) Option {
	return func(a *App) { a.loader = l }
}

// FaceData describes one face override defined by a script.
type FaceData struct {
	Name         string `json:"name"`
	Instructions int    `json:"instructions"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of checking a shape script.
type EvalResult struct {
	Faces    []FaceData      `json:"faces"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with an engine, the sdfx kernel and a texture
// loader rooted at the configured asset directory.
func NewApp(cfg config.Config, log zerolog.Logger, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		log:    log,
		engine: engine.NewEngine(),
		kernel: sdfx.New(sdfx.WithCells(cfg.MeshCells)),
		loader: texture.DefaultLoader{Root: cfg.AssetDir},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Evaluate checks a shape script and reports the faces it overrides.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Faces:    []FaceData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error().Err(err).Msg("evaluate")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Face + ": " + w.Message})
	}
	for _, name := range res.Order {
		s := res.Shapes[name]
		if _, err := shape.Build(s); err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: fmt.Sprintf("%s: %v", name, err)})
			continue
		}
		result.Faces = append(result.Faces, FaceData{Name: name, Instructions: len(s)})
	}
	return result
}

// ErrInvalidAssembly reports a built graph that failed validation.
var ErrInvalidAssembly = errors.New("invalid assembly")

// Design is one built box.
type Design struct {
	Params   config.Params
	Assembly *assembly.Assembly
	// Timeline is set for the foldable view.
	Timeline *animate.Timeline
}

// Look returns the face appearance for p.
func Look(p config.Params) panel.Look {
	look := panel.Look{Color: p.Color}
	if look.Color == "" {
		look.Color = panel.DefaultColor
	}
	switch p.FaceKind {
	case config.FaceMaterial:
		look.Texture, _ = texture.PresetRef(texture.Preset(p.Material))
	case config.FaceCustom:
		look.Texture = p.Texture
	}
	return look
}

// Design validates p, evaluates script and builds the requested view.
func (a *App) Design(p config.Params, script string) (*Design, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	shapes, err := a.shapes(script)
	if err != nil {
		return nil, err
	}

	opts := []assembly.Option{assembly.WithShapes(shapes)}
	if p.PreviewLid {
		opts = append(opts, assembly.WithPreviewLid())
	}
	// Vector output never samples textures, so its board edges keep the
	// flat kraft color. Each design owns its library; handles are dropped
	// with the assembly.
	if !strings.EqualFold(p.Format, string(export.SVG)) {
		tex := texture.NewLibrary(a.loader, a.log.With().Str("component", "texture").Logger())
		opts = append(opts, assembly.WithTextures(tex))
	}

	dims := assembly.Dimensions{Length: p.Length, Width: p.Width, Height: p.Height, Thickness: p.Thickness}
	d := &Design{Params: p}
	switch assembly.Variant(p.View) {
	case assembly.VariantDieline:
		d.Assembly, err = assembly.Dieline2D(dims, opts...)
	case assembly.VariantFoldable:
		d.Assembly, d.Timeline, err = assembly.Foldable(dims, Look(p), opts...)
	default:
		d.Assembly, err = assembly.Mockup3D(dims, Look(p), opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", p.View, err)
	}

	check := graph.ValidateAll(d.Assembly.Graph)
	for _, w := range check.Warnings {
		a.log.Warn().Str("node", w.NodeID.Short()).Msg(w.Message)
	}
	if len(check.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAssembly, errors.Join(lo.Map(check.Errors, func(e graph.ValidationError, _ int) error { return e })...))
	}
	a.log.Debug().
		Str("id", d.Assembly.ID.String()).
		Str("view", p.View).
		Stringer("dims", dims).
		Int("nodes", d.Assembly.Graph.NodeCount()).
		Msg("assembled")
	return d, nil
}

func (a *App) shapes(script string) (map[string]shape.Shape, error) {
	if strings.TrimSpace(script) == "" {
		return nil, nil
	}
	return a.engine.Shapes(script)
}

// waiter is a texture that can be waited on.
type waiter interface {
	Ref() string
	Wait(ctx context.Context) error
}

// WaitTextures blocks until every texture the graph references has
// resolved. Failed loads are not errors: their faces keep the fallback
// color. Only ctx ending is reported.
func (a *App) WaitTextures(ctx context.Context, g *graph.DesignGraph) error {
	handles := lo.UniqBy(lo.FilterMap(tessellate.Faces(g), func(f tessellate.Face, _ int) (waiter, bool) {
		w, ok := f.Material.Texture.(waiter)
		return w, ok && f.Material.Textured()
	}), func(w waiter) string { return w.Ref() })

	for _, h := range handles {
		if err := h.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for textures: %w", ctx.Err())
			}
			a.log.Debug().Err(err).Msg("texture fell back to color")
		}
	}
	return nil
}

// View returns the camera and light for a view.
func View(view string) (render.Camera, render.Light) {
	switch assembly.Variant(view) {
	case assembly.VariantDieline:
		return render.DielineCamera(), render.FlatLight()
	case assembly.VariantFoldable:
		return render.FoldableCamera(), render.DefaultLight()
	}
	return render.MockupCamera(), render.DefaultLight()
}

// Export builds p and writes it in p's format. SVG of textured faces is
// refused up front with export.ErrUnsupportedCombination.
func (a *App) Export(ctx context.Context, w io.Writer, p config.Params, script string) (export.Format, error) {
	f, err := export.ParseFormat(p.Format)
	if err != nil {
		return "", err
	}
	if f == export.SVG && p.Textured() {
		return "", fmt.Errorf("%w: svg needs Color faces, got %s", export.ErrUnsupportedCombination, p.FaceKind)
	}

	d, err := a.Design(p, script)
	if err != nil {
		return "", err
	}
	if err := a.WaitTextures(ctx, d.Assembly.Graph); err != nil {
		return "", err
	}

	cam, light := View(p.View)
	err = export.Write(ctx, w, export.Request{
		Graph:  d.Assembly.Graph,
		Format: f,
		Width:  a.cfg.ImageWidth,
		Height: a.cfg.ImageHeight,
		Camera: cam,
		Light:  light,
		Kernel: a.kernel,
	})
	if err != nil {
		return "", err
	}
	a.log.Info().Str("format", string(f)).Str("view", p.View).Msg("exported")
	return f, nil
}

// Strategy selects how the foldable view is animated.
type Strategy string

const (
	// StrategyTimeline plays the fixed fold timeline and settles.
	StrategyTimeline Strategy = "timeline"
	// StrategyLerp eases the lid hinges toward their targets every frame
	// and never settles, so it runs for a fixed number of frames.
	StrategyLerp Strategy = "lerp"
)

// Frame is called after each animation step with the frame index, the
// clock in seconds and the graph in its current pose.
type Frame func(i int, clock float64, g *graph.DesignGraph) error

// Animate folds the foldable view of p. fps sets the step; frames bounds
// the lerp strategy.
func (a *App) Animate(ctx context.Context, p config.Params, script string, strategy Strategy, fps, frames int, frame Frame) error {
	if fps <= 0 {
		return fmt.Errorf("fps %d must be positive", fps)
	}
	p.View = string(assembly.VariantFoldable)
	d, err := a.Design(p, script)
	if err != nil {
		return err
	}
	if err := a.WaitTextures(ctx, d.Assembly.Graph); err != nil {
		return err
	}
	g := d.Assembly.Graph
	dt := 1 / float64(fps)

	switch strategy {
	case StrategyLerp:
		f, err := animate.NewFollower(g, assembly.FollowTargets()...)
		if err != nil {
			return err
		}
		for i := 0; i < frames; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f.Frame(); err != nil {
				return err
			}
			if err := frame(i, float64(i+1)*dt, g); err != nil {
				return err
			}
		}
		return nil
	case StrategyTimeline, "":
		seq := animate.NewSequencer(g, d.Timeline)
		i := 0
		return seq.Run(dt, func(clock float64) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := frame(i, clock, g)
			i++
			return err
		})
	}
	return fmt.Errorf("unknown animation strategy %q", strategy)
}
