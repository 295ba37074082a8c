package core

// KeyCode identifies one of the eight DMG joypad buttons.
type KeyCode int

const (
	KeyUp KeyCode = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyA
	KeyB
	KeyStart
	KeySelect
)

// KeyState is whether a KeyEvent reports a press or release.
type KeyState int

const (
	KeyPressed KeyState = iota
	KeyReleased
)

// KeyEvent is a single joypad transition delivered by the host on the input
// channel. A Quit event (see Quit()) asks the core to stop its tick loop.
type KeyEvent struct {
	Code  KeyCode
	State KeyState
}

// InputEvent is anything the host can send on the input channel: a KeyEvent
// or a request to quit.
type InputEvent struct {
	Key    KeyEvent
	IsQuit bool
}

// Quit builds the sentinel InputEvent that asks Core.Run to stop cleanly.
func Quit() InputEvent { return InputEvent{IsQuit: true} }
