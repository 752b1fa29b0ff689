package pracc

// RegisterBlock is the MIPS32 core register snapshot moved by ReadRegsCode
// and WriteRegsCode: the 32 general-purpose registers followed by status,
// lo, hi, badvaddr, cause and depc (spec.md §6), laid out in the exact word
// order the routines read and write.
type RegisterBlock struct {
	GPR      [32]uint32
	Status   uint32
	Lo       uint32
	Hi       uint32
	BadVAddr uint32
	Cause    uint32
	DEPC     uint32
}

// Words flattens the block into the 38-word buffer ReadRegsCode/
// WriteRegsCode exchange through param_in/param_out.
func (r *RegisterBlock) Words() []uint32 {
	w := make([]uint32, numCoreRegs)
	copy(w, r.GPR[:])
	w[32] = r.Status
	w[33] = r.Lo
	w[34] = r.Hi
	w[35] = r.BadVAddr
	w[36] = r.Cause
	w[37] = r.DEPC
	return w
}

// registerBlockFromWords is the inverse of Words.
func registerBlockFromWords(w []uint32) *RegisterBlock {
	r := &RegisterBlock{}
	copy(r.GPR[:], w[:32])
	r.Status = w[32]
	r.Lo = w[33]
	r.Hi = w[34]
	r.BadVAddr = w[35]
	r.Cause = w[36]
	r.DEPC = w[37]
	return r
}
