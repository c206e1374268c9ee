// Package ipset implements a compact membership set for IPv4 networks.
//
// A Set summarizes the union of all inserted CIDR networks in two flat
// per-depth tables, so Contains answers in at most 32 bit steps no matter
// how many networks were inserted. There is no deletion and no iteration:
// the per-depth summary is monotone and does not remember individual
// networks.
package ipset

import "net/netip"

// Set stores the union of IPv4 networks and answers membership queries.
//
// The zero value is an empty set, ready for use. A Set is a plain value
// without internal locking: callers sharing one between goroutines must
// not run Insert concurrently with any other operation.
type Set struct {
	entries  [32]entry
	terminal uint32 // bit d set once some inserted network has prefix length d+1
}

// New returns the union of the given networks.
//
// Insertion order does not matter, the resulting set is the same for any
// permutation of networks.
func New(networks []netip.Prefix) *Set {
	s := new(Set)
	for _, n := range networks {
		s.Insert(n)
	}
	return s
}

// Insert adds a network to the set, widening it to cover every address
// of the network. Prefixes that are invalid or not IPv4 are ignored.
func (s *Set) Insert(pfx netip.Prefix) {
	if !pfx.IsValid() || !pfx.Addr().Is4() {
		return
	}
	// A /0 matches everything. Contains checks the terminal bit of
	// depth 0 before comparing any address bit, so no other depth
	// has to be touched.
	if pfx.Bits() == 0 {
		s.entries[0] = both
		s.terminal |= 1
		return
	}
	n := pfx.Bits()
	s.terminal |= 1 << (n - 1)
	octets := pfx.Addr().As4()
	for i := 0; i < n; i++ {
		s.entries[i] = s.entries[i].observe(bitAt(octets, i))
	}
}

// Contains reports whether ip is covered by any inserted network.
// Addresses that are not IPv4 are never contained.
func (s *Set) Contains(ip netip.Addr) bool {
	if !ip.Is4() {
		return false
	}
	octets := ip.As4()
	for i := 0; i < 32; i++ {
		if s.terminal&(1<<i) != 0 {
			return true
		}
		if !s.entries[i].matches(bitAt(octets, i)) {
			return false
		}
	}
	// All 32 bits were consistent with observed networks, treat as a
	// full-length match. Depth 31 is observed only when a /32 was
	// inserted, which also sets its terminal bit, so the loop above
	// always decides before falling through.
	return true
}
