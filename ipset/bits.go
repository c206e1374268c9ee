package ipset

// isBitSet reports whether bit i of octet is set, counting from the
// most significant bit: i == 0 tests the 128 value bit.
func isBitSet(octet byte, i int) bool {
	return octet&(0x80>>i) != 0
}

// bitAt extracts bit i of a 4-octet address. Depths run MSB first
// through the octets in address order, so depth 0 is the high bit of
// the first octet and depth 31 the low bit of the last. Insert and
// Contains must agree on this mapping.
func bitAt(octets [4]byte, i int) uint8 {
	if isBitSet(octets[i>>3], i&7) {
		return 1
	}
	return 0
}
