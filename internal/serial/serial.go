// Package serial implements the DMG link-cable port (SB/SC). Real link
// cable timing is not modeled; a transfer started with the internal clock
// completes immediately, which is exactly what test ROMs like blargg's
// rely on to print output through the serial port.
package serial

import "io"

type Port struct {
	sb byte // FF01, transfer data
	sc byte // FF02, bit7 start, bit0 clock source

	sink io.Writer

	requestIRQ func()
}

func New(requestIRQ func()) *Port {
	return &Port{requestIRQ: requestIRQ}
}

// SetSink directs completed transfer bytes to w; nil disables the sink.
func (p *Port) SetSink(w io.Writer) { p.sink = w }

func (p *Port) SB() byte { return p.sb }
func (p *Port) SC() byte { return 0x7E | (p.sc & 0x81) }

func (p *Port) WriteSB(v byte) { p.sb = v }

func (p *Port) WriteSC(v byte) {
	p.sc = v & 0x81
	if p.sc&0x80 == 0 {
		return
	}
	if p.sink != nil {
		_, _ = p.sink.Write([]byte{p.sb})
	}
	p.requestIRQ()
	p.sc &^= 0x80 // transfer completes within the same write
}
