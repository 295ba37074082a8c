// Package host is the reference ebiten-based window/audio/input binding for
// internal/core. It is intentionally thin: blit the framebuffer, stream
// audio, turn key presses into core.KeyEvent values. Everything the
// teacher's internal/ui adds on top of that (menus, save-state slots, a ROM
// picker, a key-remap screen, a shell overlay) is out of scope here.
package host

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/hollowbyte/gbcore/internal/core"
)

// dmgPalette maps a 2-bit shade index to an RGBA color, lightest to darkest.
var dmgPalette = [4][4]byte{
	{0x9B, 0xBC, 0x0F, 0xFF},
	{0x8B, 0xAC, 0x0F, 0xFF},
	{0x30, 0x62, 0x30, 0xFF},
	{0x0F, 0x38, 0x0F, 0xFF},
}

// App adapts a *core.Core to ebiten.Game: it pumps key events into
// core.Input, blits frames received on core.Frames, and streams audio
// buffers received on core.Audio through an ebiten audio.Player.
type App struct {
	cfg  Config
	c    *core.Core
	tex  *ebiten.Image
	pix  []byte // scratch RGBA buffer, reused across frames

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	audioSrc    *coreAudioStream
}

// NewApp wires an ebiten game around c. Call Run to open the window.
func NewApp(cfg Config, c *core.Core) *App {
	cfg.defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{
		cfg: cfg,
		c:   c,
		pix: make([]byte, 160*144*4),
	}
}

// Run blocks until the window is closed; it does not return when the core
// stops.
func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if a.audioPlayer == nil {
		a.audioCtx = audio.NewContext(48000)
		a.audioSrc = &coreAudioStream{audio: a.c.Audio}
		if p, err := a.audioCtx.NewPlayer(a.audioSrc); err == nil {
			a.audioPlayer = p
			a.audioPlayer.Play()
		}
	}

	sendKey := func(code core.KeyCode, pressed bool) {
		state := core.KeyReleased
		if pressed {
			state = core.KeyPressed
		}
		select {
		case a.c.Input <- core.InputEvent{Key: core.KeyEvent{Code: code, State: state}}:
		default:
		}
	}
	sendKey(core.KeyRight, ebiten.IsKeyPressed(ebiten.KeyRight))
	sendKey(core.KeyLeft, ebiten.IsKeyPressed(ebiten.KeyLeft))
	sendKey(core.KeyUp, ebiten.IsKeyPressed(ebiten.KeyUp))
	sendKey(core.KeyDown, ebiten.IsKeyPressed(ebiten.KeyDown))
	sendKey(core.KeyA, ebiten.IsKeyPressed(ebiten.KeyZ))
	sendKey(core.KeyB, ebiten.IsKeyPressed(ebiten.KeyX))
	sendKey(core.KeyStart, ebiten.IsKeyPressed(ebiten.KeyEnter))
	sendKey(core.KeySelect, ebiten.IsKeyPressed(ebiten.KeyShiftRight))

	if ebiten.IsWindowBeingClosed() {
		select {
		case a.c.Input <- core.Quit():
		default:
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	select {
	case fb := <-a.c.Frames:
		a.blit(fb)
	default:
	}
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	a.tex.WritePixels(a.pix)
	screen.DrawImage(a.tex, nil)
}

func (a *App) blit(fb [144][160]byte) {
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			c := dmgPalette[fb[y][x]&0x03]
			i := (y*160 + x) * 4
			copy(a.pix[i:i+4], c[:])
		}
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) { return 160, 144 }
