package host

// Config contains the window settings (title and scale) for the ebiten host.
// Deliberately minimal: no ROM picker, save-state slots, key remap, or
// shell overlay.
type Config struct {
	Title string
	Scale int
}

func (c *Config) defaults() {
	if c.Title == "" {
		c.Title = "gbcore"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
