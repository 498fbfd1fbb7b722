package visionary

import "hash/crc32"

// DefaultCRCInit is the initial value callers should seed a CRC-32 or
// CRC-32C computation with, per the device's checksum convention.
const DefaultCRCInit uint32 = 0xFFFFFFFF

// crc32Table and crc32cTable are precomputed once from the stdlib's
// reflected polynomial tables, matching the reflected 0xEDB88320 (IEEE)
// and 0x82F63B78 (Castagnoli) polynomials used by the device.
var (
	crc32Table  = crc32.MakeTable(crc32.IEEE)
	crc32cTable = crc32.MakeTable(crc32.Castagnoli)
)

// CRC32Block computes CRC-32 (reflected polynomial 0xEDB88320) over data
// starting from init, WITHOUT a final XOR — callers apply bitwise NOT
// themselves where the protocol calls for the complemented form (the
// blob-segment CRC check does; fragment loss detection elsewhere may not).
//
// Incremental: CRC32Block(b, CRC32Block(a, init)) == CRC32Block(a||b, init)
// for any split of a contiguous buffer into a, b.
func CRC32Block(data []byte, init uint32) uint32 {
	return ^crc32.Update(^init, crc32Table, data)
}

// CRC32CBlock computes CRC-32C (reflected polynomial 0x82F63B78, Castagnoli)
// over data starting from init, without a final XOR.
func CRC32CBlock(data []byte, init uint32) uint32 {
	return ^crc32.Update(^init, crc32cTable, data)
}
