package ublaster

import "context"

// queueByteShiftChunk enqueues one byte-shift header followed by n payload
// bytes (spec.md §4.3). payload may be nil, in which case n zero bytes are
// sent (an output-only request). The caller is responsible for ensuring TCK
// is low before calling this (the idle clock emitted at the end of the
// preceding bit-bang burst) and for flushing/reading back n TDO bytes
// afterward when read is true.
func (c *Cable) queueByteShiftChunk(ctx context.Context, payload []byte, n int, read bool) error {
	if n < 1 || n > maxShiftPayload {
		return &ProtocolError{Msg: "byte-shift chunk size out of range [1,63]"}
	}
	if err := c.pb.queueByte(ctx, byteShiftHeader(read, n)); err != nil {
		return err
	}
	return c.pb.queueBytes(ctx, payload, n)
}
