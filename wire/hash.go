package wire

// PJWHash16 produces a reproducible 16-bit hash of s. Unlike the runtime's
// string hashing it yields the same value across platforms and executions,
// which lets a receiver match a visual-model package by hash without the
// package name ever crossing the wire.
func PJWHash16(s string) uint16 {
	var h uint16
	for i := 0; i < len(s); i++ {
		h = h<<4 + uint16(s[i])
		if high := h & 0xF000; high != 0 {
			h ^= high >> 12
			h &^= high
		}
	}
	return h
}
