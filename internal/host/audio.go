package host

import (
	"encoding/binary"
	"time"
)

// coreAudioStream implements io.Reader by draining interleaved stereo int16
// buffers from a core.Core's Audio channel and serializing them as
// little-endian bytes for ebiten's audio.Player.
type coreAudioStream struct {
	audio <-chan []int16
	carry []int16 // samples read from a buffer but not yet consumed
}

func (s *coreAudioStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := 0
	for n+4 <= len(p) {
		if len(s.carry) == 0 {
			select {
			case buf := <-s.audio:
				s.carry = buf
			case <-time.After(10 * time.Millisecond):
				// Underrun: pad the rest of the request with silence.
				for ; n+4 <= len(p); n += 4 {
					binary.LittleEndian.PutUint16(p[n:], 0)
					binary.LittleEndian.PutUint16(p[n+2:], 0)
				}
				return n, nil
			}
		}
		binary.LittleEndian.PutUint16(p[n:], uint16(s.carry[0]))
		binary.LittleEndian.PutUint16(p[n+2:], uint16(s.carry[1]))
		s.carry = s.carry[2:]
		n += 4
	}
	return n, nil
}
