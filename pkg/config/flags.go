package config

import "flag"

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Config string

	Length     float64
	Width      float64
	Height     float64
	Thickness  float64
	FaceKind   string
	Color      string
	Texture    string
	Material   string
	Format     string
	View       string
	PreviewLid bool

	ImageWidth  int
	ImageHeight int
	Name        string
	OutDir      string
	AssetDir    string
	Script      string
	Listen      string
	LogLevel    string
}

// Bind registers the flags on fs. Values left unset stay zero and do not
// override the config file.
func Bind(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "JSON5 config file")
	fs.Float64Var(&f.Length, "length", 0, "box length in mm")
	fs.Float64Var(&f.Width, "width", 0, "box width in mm")
	fs.Float64Var(&f.Height, "height", 0, "box height in mm")
	fs.Float64Var(&f.Thickness, "thickness", 0, "board thickness in mm")
	fs.StringVar(&f.FaceKind, "face", "", "face kind: Color, Material or Custom")
	fs.StringVar(&f.Color, "color", "", "face color as #RRGGBB")
	fs.StringVar(&f.Texture, "texture", "", "custom face texture: path, URL or data URI")
	fs.StringVar(&f.Material, "material", "", "material preset: cardboard, paper or pattern")
	fs.StringVar(&f.Format, "format", "", "output format: png, jpeg, webp, pdf, svg or stl")
	fs.StringVar(&f.View, "view", "", "view: mockup, dieline or foldable")
	fs.BoolVar(&f.PreviewLid, "preview", false, "half-open lid on the mockup")
	fs.IntVar(&f.ImageWidth, "w", 0, "image width in pixels")
	fs.IntVar(&f.ImageHeight, "h", 0, "image height in pixels")
	fs.StringVar(&f.Name, "name", "", "output file name without extension")
	fs.StringVar(&f.OutDir, "out", "", "output directory")
	fs.StringVar(&f.AssetDir, "assets", "", "directory holding material textures")
	fs.StringVar(&f.Script, "script", "", "Lisp shape script overriding face outlines")
	fs.StringVar(&f.Listen, "listen", "", "HTTP listen address")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	return f
}
