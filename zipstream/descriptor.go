package zipstream

import (
	"encoding/binary"
	"io"
)

// readDataDescriptor reads the trailing record that carries CRC-32 and
// sizes for entries whose Local File Header deferred them (general-purpose
// bit 3). The 4-byte signature is optional; if the first word read doesn't
// match it, those bytes are the CRC itself.
func readDataDescriptor(source io.Reader, usesZIP64 bool) (crc uint32, csize, usize uint64, err error) {
	var head [4]byte
	if _, err = io.ReadFull(source, head[:]); err != nil {
		return 0, 0, 0, truncatedf("data descriptor", err)
	}

	crc = binary.LittleEndian.Uint32(head[:])
	if crc == sigDataDesc {
		if _, err = io.ReadFull(source, head[:]); err != nil {
			return 0, 0, 0, truncatedf("data descriptor", err)
		}
		crc = binary.LittleEndian.Uint32(head[:])
	}

	if usesZIP64 {
		var sizes [16]byte
		if _, err = io.ReadFull(source, sizes[:]); err != nil {
			return 0, 0, 0, truncatedf("data descriptor", err)
		}
		csize = binary.LittleEndian.Uint64(sizes[0:8])
		usize = binary.LittleEndian.Uint64(sizes[8:16])
		return crc, csize, usize, nil
	}

	var sizes [8]byte
	if _, err = io.ReadFull(source, sizes[:]); err != nil {
		return 0, 0, 0, truncatedf("data descriptor", err)
	}
	csize = uint64(binary.LittleEndian.Uint32(sizes[0:4]))
	usize = uint64(binary.LittleEndian.Uint32(sizes[4:8]))
	return crc, csize, usize, nil
}

// dataDescriptorLen returns the expected length of the descriptor excluding
// its optional 4-byte signature: 12 bytes (3x32-bit) classic, 20 bytes
// (32-bit CRC + 2x64-bit sizes) under ZIP64.
func dataDescriptorLen(usesZIP64 bool) int {
	if usesZIP64 {
		return 20
	}
	return 12
}
