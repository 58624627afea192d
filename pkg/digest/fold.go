package digest

// XorShift folds msg into a byte, xoring the running value with itself shifted by shift bits
// into the high nibble. shift is in [-4, 4]; 0 is a plain byte xor.
// Negative shifts fold the right shifted value into the high nibble as well.
func XorShift(msg []byte, shift int) uint8 {
	var r uint8
	for _, b := range msg {
		r ^= b
		switch {
		case shift > 0:
			r ^= ((r ^ r<<uint(shift)) & 0x0f) << 4
		case shift < 0:
			r ^= ((r ^ r>>uint(-shift)) & 0x0f) << 4
		}
	}
	return r
}

// XorShiftMask folds msg into a byte. After each byte is xored in, the running value is xored
// with copies of itself shifted left by s for every bit s-1 set in up, and right by s for every
// bit s-1 set in down (s in 1..7).
func XorShiftMask(msg []byte, up, down uint8) uint8 {
	var r uint8
	for _, b := range msg {
		r ^= b
		acc := r
		for s := uint(1); s <= 7; s++ {
			if up>>(s-1)&1 != 0 {
				acc ^= r << s
			}
			if down>>(s-1)&1 != 0 {
				acc ^= r >> s
			}
		}
		r = acc
	}
	return r
}
