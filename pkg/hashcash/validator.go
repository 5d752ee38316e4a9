package hashcash

// Passes reports whether the first bits bits of digest are zero. A digest
// shorter than bits never passes.
func Passes(digest []byte, bits int) bool {
	if bits < 0 || bits > len(digest)*8 {
		return false
	}

	fullBytes := bits / 8
	for _, b := range digest[:fullBytes] {
		if b != 0 {
			return false
		}
	}

	remainderBits := bits % 8
	if remainderBits == 0 {
		return true
	}
	mask := byte(0xFF) << (8 - remainderBits)
	return digest[fullBytes]&mask == 0
}
