package ipset

import "testing"

func TestIsBitSet(t *testing.T) {
	for _, tc := range []struct {
		octet    byte
		i        int
		expected bool
	}{
		{33, 0, false},
		{33, 1, false},
		{33, 2, true},
		{33, 3, false},
		{33, 4, false},
		{33, 5, false},
		{33, 6, false},
		{33, 7, true},
		{128, 0, true},
		{128, 7, false},
		{255, 0, true},
		{255, 7, true},
		{0, 0, false},
	} {
		if isBitSet(tc.octet, tc.i) != tc.expected {
			t.Errorf("isBitSet(%d, %d) should be %v", tc.octet, tc.i, tc.expected)
		}
	}
}

func TestBitAt(t *testing.T) {
	// 10.10.0.9 is 00001010 00001010 00000000 00001001.
	octets := [4]byte{10, 10, 0, 9}
	expected := [32]uint8{
		0, 0, 0, 0, 1, 0, 1, 0,
		0, 0, 0, 0, 1, 0, 1, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 1,
	}
	for i, e := range expected {
		if bitAt(octets, i) != e {
			t.Errorf("bitAt(%v, %d) should be %d", octets, i, e)
		}
	}
}
