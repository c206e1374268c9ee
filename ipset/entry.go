package ipset

// entry summarizes the bit values observed at one bit depth across all
// inserted networks.
type entry uint8

const (
	unobserved entry = iota // no network reaches this depth
	onlyZero
	onlyOne
	both
)

// observe joins one bit observation into e. The join is monotone: once
// both, an entry never reverts.
func (e entry) observe(bit uint8) entry {
	switch e {
	case unobserved:
		if bit == 0 {
			return onlyZero
		}
		return onlyOne
	case onlyZero:
		if bit == 1 {
			return both
		}
	case onlyOne:
		if bit == 0 {
			return both
		}
	}
	return e
}

// matches reports whether bit is consistent with the observations made
// at this depth. An unobserved entry matches nothing.
func (e entry) matches(bit uint8) bool {
	switch e {
	case both:
		return true
	case onlyOne:
		return bit == 1
	case onlyZero:
		return bit == 0
	}
	return false
}
