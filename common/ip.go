package common

import (
	"encoding/binary"
	"net/netip"
)

// IPToUint32 packs an IPv4 address into the integer stored on comments.
// Anything that is not IPv4 packs to 0.
func IPToUint32(ip string) uint32 {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return 0
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:])
}

func Uint32ToIP(n uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return netip.AddrFrom4(b).String()
}
