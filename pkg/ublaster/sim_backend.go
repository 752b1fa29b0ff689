package ublaster

import (
	"context"
	"sync"
)

func init() {
	RegisterBackend("sim", func() Backend { return NewSimBackend() })
}

// SimBackend is an in-memory decoder of the USB-Blaster wire protocol, used
// as the loopback fixture named in spec.md §8 property 4 (TDO=TDI) and to
// exercise the full Cable without hardware. It is grounded on pkg/jtag's
// SimAdapter, translated from that package's shift-hook style down to this
// protocol's raw byte stream.
type SimBackend struct {
	mu sync.Mutex

	// OnBit, when set, computes the TDO bit for a bit-bang clocked bit
	// given the TDI bit that was driven. Default is pure TDI echo.
	OnBit func(tdi bool) bool

	// OnByte, when set, computes the TDO byte for a byte-shift payload
	// byte. Default is pure TDI echo.
	OnByte func(tdi byte) byte

	pendingHeader int  // remaining payload bytes expected for a byte-shift header
	pendingRead   bool // whether the in-flight byte-shift header requested TDO
	prevTCK       bool

	out []byte
}

// NewSimBackend constructs a loopback backend with TDO=TDI echo semantics.
func NewSimBackend() *SimBackend {
	return &SimBackend{}
}

func (s *SimBackend) Open(ctx context.Context, vid, pid uint16, desc string) error { return nil }

func (s *SimBackend) Close() error { return nil }

func (s *SimBackend) Read(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *SimBackend) Write(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range p {
		s.consume(b)
	}
	return len(p), nil
}

func (s *SimBackend) consume(b byte) {
	if s.pendingHeader > 0 {
		tdo := b
		if s.OnByte != nil {
			tdo = s.OnByte(b)
		}
		if s.pendingRead {
			s.out = append(s.out, tdo)
		}
		s.pendingHeader--
		return
	}

	if b&shiftHeaderBit != 0 {
		n := int(b & shiftCountMask)
		s.pendingRead = b&shiftReadBit != 0
		s.pendingHeader = n
		return
	}

	// Bit-bang byte: one TDO response per clocked bit, emitted on the
	// TCK=1 half of the TCK=0/TCK=1 pair (spec.md §4.2, §6).
	tck := b&bitTCK != 0
	if tck && !s.prevTCK {
		read := b&bitREAD != 0
		tdi := b&bitTDI != 0
		if read {
			result := tdi
			if s.OnBit != nil {
				result = s.OnBit(tdi)
			}
			var out byte
			if result {
				out = 1
			}
			s.out = append(s.out, out)
		}
	}
	s.prevTCK = tck
}
