package ublaster

import "context"

func getBit(buf []byte, i int) bool {
	if buf == nil {
		return false
	}
	return buf[i/8]&(1<<uint(i%8)) != 0
}

func setBit(buf []byte, i int, v bool) {
	if v {
		buf[i/8] |= 1 << uint(i%8)
	}
}

// queueTDI is the Scan Engine: it splits nbits into byte-shifted bytes and a
// trailing bit-bang tail, guaranteeing the last TDI bit is always clocked
// via bit-bang so it can flip TMS on exit, per spec.md §4.4.
//
// bits may be nil, in which case TDI is driven low for every bit (TDO is
// still captured when dir wants it). The returned slice is nil when
// dir == ScanOut.
func (c *Cable) queueTDI(ctx context.Context, bits []byte, nbits int, dir ScanDir, tapShift bool) ([]byte, error) {
	if nbits <= 0 {
		return nil, &ProtocolError{Msg: "queueTDI: nbits must be positive"}
	}

	nb8 := nbits / 8
	nb1 := nbits - 8*nb8
	if nb1 == 0 && nb8 > 0 {
		nb8--
		nb1 = 8
	}

	var tdo []byte
	if dir.wantsRead() {
		tdo = make([]byte, (nbits+7)/8)
	}

	read := dir.wantsRead()

	for i := 0; i < nb8; {
		trans := c.Remaining() - 1
		if trans > nb8-i {
			trans = nb8 - i
		}
		if trans < 1 {
			if err := c.Flush(ctx); err != nil {
				return nil, err
			}
			continue
		}

		var payload []byte
		if bits != nil {
			payload = make([]byte, trans)
			for j := 0; j < trans; j++ {
				byteIdx := i + j
				var b byte
				for bit := 0; bit < 8; bit++ {
					if getBit(bits, byteIdx*8+bit) {
						b |= 1 << uint(bit)
					}
				}
				payload[j] = b
			}
		}

		if err := c.queueByteShiftChunk(ctx, payload, trans, read); err != nil {
			return nil, err
		}

		if read {
			if err := c.Flush(ctx); err != nil {
				return nil, err
			}
			got, err := c.pb.readBytes(ctx, trans)
			if err != nil {
				return nil, err
			}
			copy(tdo[i:i+trans], got)
		}

		i += trans
	}

	baseBit := nb8 * 8
	for k := 0; k < nb1; k++ {
		tdiBit := getBit(bits, baseBit+k)
		last := tapShift && k == nb1-1
		var err error
		if last {
			err = c.clockTDIFlipTMS(ctx, tdiBit, dir)
		} else {
			err = c.clockTDI(ctx, tdiBit, dir)
		}
		if err != nil {
			return nil, err
		}
	}

	if read {
		if err := c.Flush(ctx); err != nil {
			return nil, err
		}
		got, err := c.pb.readBytes(ctx, nb1)
		if err != nil {
			return nil, err
		}
		for k := 0; k < nb1; k++ {
			setBit(tdo, baseBit+k, got[k]&0x01 != 0)
		}
	}

	if err := c.idleClock(ctx); err != nil {
		return nil, err
	}

	return tdo, nil
}
