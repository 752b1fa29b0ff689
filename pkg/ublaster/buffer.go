package ublaster

import "context"

// packetBuffer accumulates up to 64 bytes of outgoing protocol data and
// flushes them to the transport as a single USB write, per spec.md §4.1.
type packetBuffer struct {
	backend Backend
	buf     [packetSize]byte
	bufidx  int
}

func newPacketBuffer(backend Backend) *packetBuffer {
	return &packetBuffer{backend: backend}
}

// remaining reports how many more bytes can be queued before a flush is
// required.
func (p *packetBuffer) remaining() int {
	return packetSize - p.bufidx
}

// queueByte appends a single byte, flushing first if the buffer is already
// full, and flushing again immediately after storing if that fills it.
func (p *packetBuffer) queueByte(ctx context.Context, b byte) error {
	if p.bufidx >= packetSize {
		if err := p.flush(ctx); err != nil {
			return err
		}
	}
	p.buf[p.bufidx] = b
	p.bufidx++
	if p.bufidx >= packetSize {
		return p.flush(ctx)
	}
	return nil
}

// queueBytes appends n bytes from src (or n zero bytes if src is nil). It is
// a ProgrammerError — a caller bug — to request more bytes than remaining().
func (p *packetBuffer) queueBytes(ctx context.Context, src []byte, n int) error {
	if n > p.remaining() {
		return &ProgrammerError{Msg: "queueBytes: n exceeds remaining packet space"}
	}
	if src == nil {
		for i := 0; i < n; i++ {
			p.buf[p.bufidx+i] = 0
		}
	} else {
		copy(p.buf[p.bufidx:p.bufidx+n], src[:n])
	}
	p.bufidx += n
	return nil
}

// flush writes bufidx bytes to the transport, retrying on short writes until
// the whole tail has been accepted, then resets bufidx to zero.
func (p *packetBuffer) flush(ctx context.Context) error {
	if p.bufidx == 0 {
		return nil
	}
	remaining := p.buf[:p.bufidx]
	for len(remaining) > 0 {
		n, err := p.backend.Write(ctx, remaining)
		if err != nil {
			return &TransportError{Op: "flush", Err: err}
		}
		if n <= 0 {
			return &TransportError{Op: "flush", Err: errShortWriteStalled}
		}
		remaining = remaining[n:]
	}
	p.bufidx = 0
	return nil
}

// readBytes reads exactly n bytes of TDO back from the transport.
func (p *packetBuffer) readBytes(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		chunk := make([]byte, n-len(out))
		got, err := p.backend.Read(ctx, chunk)
		if err != nil {
			return nil, &TransportError{Op: "read", Err: err}
		}
		out = append(out, chunk[:got]...)
	}
	return out, nil
}

var errShortWriteStalled = shortWriteStalledErr{}

type shortWriteStalledErr struct{}

func (shortWriteStalledErr) Error() string { return "transport accepted zero bytes" }
