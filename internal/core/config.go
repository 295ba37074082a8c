package core

// Config contains settings that affect emulation behavior, mirroring the
// teacher's internal/emu.Config but scoped to what the core itself needs;
// windowing/audio-device/input-capture settings belong to internal/host.
type Config struct {
	Trace      bool // log each retired instruction at slog.Debug
	SampleRate int  // APU output sample rate; 0 defaults to 48000
	LimitFPS   bool // not read by Run's tick loop, which never sleeps; its pace is set only by how fast the host drains Audio
}

func (c *Config) defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
}
