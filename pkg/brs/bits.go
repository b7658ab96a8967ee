package brs

// bitWriter packs values least significant bit first, the way the engine's
// network archive does.
type bitWriter struct {
	buf []byte
	pos int // bits written
}

func (w *bitWriter) bit(v bool) {
	if w.pos%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if v {
		w.buf[w.pos/8] |= 1 << (w.pos % 8)
	}
	w.pos++
}

func (w *bitWriter) bits(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.bit(v&(1<<i) != 0)
	}
}

func (w *bitWriter) bytes(b ...byte) {
	for _, v := range b {
		w.bits(uint64(v), 8)
	}
}

// uint writes v using just enough bits to represent values below limit.
// limit is raised to 2 so a single-entry table still costs one bit.
func (w *bitWriter) uint(v, limit uint32) {
	limit = max(limit, 2)
	var acc uint32
	for mask := uint32(1); acc+mask < limit && mask != 0; mask <<= 1 {
		set := v&mask != 0
		w.bit(set)
		if set {
			acc |= mask
		}
	}
}

// uintPacked writes v in 7-bit groups, each preceded by a continuation bit.
func (w *bitWriter) uintPacked(v uint32) {
	for {
		group := v & 0x7f
		v >>= 7
		w.bit(v != 0)
		w.bits(uint64(group), 7)
		if v == 0 {
			return
		}
	}
}

// intPacked stores the magnitude shifted left with the sign in bit 0
// (1 for non-negative).
func (w *bitWriter) intPacked(v int32) {
	mag := uint32(v)
	sign := uint32(1)
	if v < 0 {
		mag = uint32(-int64(v))
		sign = 0
	}
	w.uintPacked(mag<<1 | sign)
}

func (w *bitWriter) align() {
	w.pos = len(w.buf) * 8
}

func (w *bitWriter) Bytes() []byte { return w.buf }
