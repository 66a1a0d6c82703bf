package dispatch

import (
	"encoding/binary"
	"hash/fnv"
)

// OverlayKey derives the overlay entry key of a call. The same line, process
// instance, call site and explicit key always give the same value; changing
// any of them gives a different one.
func OverlayKey(line, instance int, siteID uint64, explicit int32) uint64 {
	var buf [28]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(line))
	binary.LittleEndian.PutUint64(buf[8:], uint64(instance))
	binary.LittleEndian.PutUint64(buf[16:], siteID)
	binary.LittleEndian.PutUint32(buf[24:], uint32(explicit))
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	key := h.Sum64()
	if key == 0 {
		// 0 tells the overlay to append instead of replace.
		key = 1
	}
	return key
}
