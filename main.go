package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/config"
	"github.com/chazu/carton/pkg/export"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/server"
	"github.com/chazu/carton/pkg/texture"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: carton <command> [flags]

commands:
  export   build the box and write one file in the chosen format
  animate  write the fold animation as numbered PNG frames
  check    evaluate a shape script and print the faces it overrides
  serve    run the HTTP export API

run "carton <command> -h" for the flags of a command`

// exitUnsupported is the exit status for a format the chosen faces cannot
// be written in.
const exitUnsupported = 3

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "export":
		err = runExport(ctx, args)
	case "animate":
		err = runAnimate(ctx, args)
	case "check":
		err = runCheck(args)
	case "serve":
		err = runServe(ctx, args)
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err == nil {
		return
	}
	if errors.Is(err, export.ErrUnsupportedCombination) {
		log.Error().Err(err).Msg("pick a raster format, or switch the faces to Color")
		os.Exit(exitUnsupported)
	}
	log.Fatal().Err(err).Str("command", cmd).Msg("failed")
}

// setup parses the shared flags plus any extra ones bound by bind, loads
// the config file and builds the App.
func setup(name string, args []string, bind func(fs *flag.FlagSet), opts ...Option) (config.Config, *App, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.Bind(fs)
	if bind != nil {
		bind(fs)
	}
	if err := fs.Parse(args); err != nil {
		return config.Config{}, nil, err
	}

	cfg := config.Default()
	if flags.Config != "" {
		var err error
		if cfg, err = config.Load(flags.Config); err != nil {
			return cfg, nil, err
		}
	}
	cfg.Resolve(*flags)

	logger := log.Logger.Level(cfg.Level())
	log.Logger = logger
	return cfg, NewApp(cfg, logger, opts...), nil
}

// inlineTexture turns a custom texture naming a local file into a data
// URI, so the asset loader never reads outside its root.
func inlineTexture(p *config.Params) error {
	if p.FaceKind != config.FaceCustom || p.Texture == "" || texture.IsDataURI(p.Texture) ||
		strings.HasPrefix(p.Texture, "http://") || strings.HasPrefix(p.Texture, "https://") {
		return nil
	}
	uri, err := texture.FileDataURI(p.Texture)
	if err != nil {
		return err
	}
	p.Texture = uri
	return nil
}

func readScript(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(src), nil
}

func runExport(ctx context.Context, args []string) error {
	cfg, app, err := setup("export", args, nil)
	if err != nil {
		return err
	}
	script, err := readScript(cfg.Script)
	if err != nil {
		return err
	}

	p := cfg.Params
	if err := inlineTexture(&p); err != nil {
		return err
	}

	// Buffer so a failed export leaves no partial file behind.
	var buf bytes.Buffer
	f, err := app.Export(ctx, &buf, p, script)
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.OutDir, export.FileName(cfg.Name, f))
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("bytes", buf.Len()).Msg("wrote")
	return nil
}

func runAnimate(ctx context.Context, args []string) error {
	var (
		strategy string
		fps      int
		frames   int
	)
	cfg, app, err := setup("animate", args, func(fs *flag.FlagSet) {
		fs.StringVar(&strategy, "strategy", string(StrategyTimeline), "timeline or lerp")
		fs.IntVar(&fps, "fps", 30, "frames per second")
		fs.IntVar(&frames, "frames", 120, "frame count for the lerp strategy")
	})
	if err != nil {
		return err
	}
	script, err := readScript(cfg.Script)
	if err != nil {
		return err
	}

	p := cfg.Params
	if err := inlineTexture(&p); err != nil {
		return err
	}
	f, err := export.ParseFormat(p.Format)
	if err != nil {
		return err
	}
	if !f.Raster() {
		log.Info().Str("format", string(f)).Msg("frames are raster images, writing png")
		f = export.PNG
		p.Format = string(f)
	}
	cam, light := View(string(assembly.VariantFoldable))

	written := 0
	err = app.Animate(ctx, p, script, Strategy(strategy), fps, frames, func(i int, clock float64, g *graph.DesignGraph) error {
		var buf bytes.Buffer
		err := export.Write(ctx, &buf, export.Request{
			Graph:  g,
			Format: f,
			Width:  cfg.ImageWidth,
			Height: cfg.ImageHeight,
			Camera: cam,
			Light:  light,
		})
		if err != nil {
			return fmt.Errorf("frame %d at %.2fs: %w", i, clock, err)
		}
		written++
		return writeFile(filepath.Join(cfg.OutDir, export.FileName(fmt.Sprintf("%s-%04d", nameOr(cfg.Name), i), f)), buf.Bytes())
	})
	if err != nil {
		return err
	}
	log.Info().Int("frames", written).Str("dir", cfg.OutDir).Msg("animation written")
	return nil
}

func runCheck(args []string) error {
	cfg, app, err := setup("check", args, nil)
	if err != nil {
		return err
	}
	if cfg.Script == "" {
		return errors.New("check needs -script")
	}
	script, err := readScript(cfg.Script)
	if err != nil {
		return err
	}
	result := app.Evaluate(script)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%s: %d errors", cfg.Script, len(result.Errors))
	}
	return nil
}

func runServe(ctx context.Context, args []string) error {
	cfg, app, err := setup("serve", args, nil, func(a *App) {
		a.loader = texture.UploadsOnly(texture.DefaultLoader{Root: a.cfg.AssetDir})
	})
	if err != nil {
		return err
	}
	srv := server.New(app, log.Logger.With().Str("component", "http").Logger())

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Listen) }()
	log.Info().Str("addr", cfg.Listen).Msg("serving")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func nameOr(name string) string {
	if name == "" {
		return export.DefaultName
	}
	return name
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
