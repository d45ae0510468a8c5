package protocol

import "io"

// Framer performs SLIP escaping and unescaping over a duplex byte
// channel. It follows go.bug.st/serial read semantics: a Read on the
// underlying channel that returns (0, nil) means the port's read
// timeout elapsed and surfaces as ErrTimeout.
//
// A Framer is single-owner and not safe for concurrent use, matching
// the half-duplex request/response nature of the protocol.
type Framer struct {
	rw  io.ReadWriter
	buf [1]byte
}

// NewFramer creates a Framer over the given channel.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{rw: rw}
}

// readRaw reads one raw (still escaped) byte from the channel.
func (f *Framer) readRaw() (byte, error) {
	n, err := f.rw.Read(f.buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return f.buf[0], nil
}

// Read returns exactly n logically unescaped bytes, blocking until the
// channel satisfies them or its timeout elapses. An escape byte
// followed by anything other than EscEnd or EscEsc fails with
// EscapeError.
func (f *Framer) Read(n int) ([]byte, error) {
	b := make([]byte, 0, n)
	for len(b) < n {
		c, err := f.readRaw()
		if err != nil {
			return nil, err
		}
		if c != FrameEsc {
			b = append(b, c)
			continue
		}
		c, err = f.readRaw()
		if err != nil {
			return nil, err
		}
		switch c {
		case EscEnd:
			b = append(b, FrameEnd)
		case EscEsc:
			b = append(b, FrameEsc)
		default:
			return nil, &EscapeError{Byte: c}
		}
	}
	return b, nil
}

// ReadFrameDelimiter consumes one raw byte and requires it to be the
// frame delimiter. Used for both the head and the tail of a packet.
func (f *Framer) ReadFrameDelimiter() error {
	c, err := f.readRaw()
	if err != nil {
		return err
	}
	if c != FrameEnd {
		return &FramingError{Got: c}
	}
	return nil
}

// WriteFrame emits one complete frame: delimiter, escaped packet
// bytes, delimiter, in a single write to the channel.
func (f *Framer) WriteFrame(pkt []byte) error {
	buf := make([]byte, 0, len(pkt)+2)
	buf = append(buf, FrameEnd)
	buf = append(buf, Escape(pkt)...)
	buf = append(buf, FrameEnd)
	_, err := f.rw.Write(buf)
	return err
}

// Escape applies SLIP escaping to a byte string. Escape and the
// unescaping performed by Read are exact inverses for every input,
// including inputs containing the delimiter and escape bytes.
func Escape(p []byte) []byte {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		switch b {
		case FrameEnd:
			out = append(out, FrameEsc, EscEnd)
		case FrameEsc:
			out = append(out, FrameEsc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	return out
}
