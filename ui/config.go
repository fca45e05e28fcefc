package ui

// Style names.
const (
	AutoStyle  = "auto"
	DarkStyle  = "dark"
	LightStyle = "light"
)

// Config contains TUI-specific configuration.
type Config struct {
	// Unit file, units index, directory or URL to open.
	Path string

	EnableMouse bool   `env:"LECTIO_MOUSE"`
	MaxWidth    uint   `env:"LECTIO_WIDTH" envDefault:"100"`
	Style       string `env:"LECTIO_STYLE" envDefault:"auto"`

	// Reload the open unit when its file changes.
	Watch bool `env:"LECTIO_WATCH" envDefault:"true"`
	// Warm the clip cache after a unit opens.
	Preload bool `env:"LECTIO_PRELOAD" envDefault:"true"`
}
