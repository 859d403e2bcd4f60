package zipstream

import (
	"bytes"
	"encoding/binary"
)

// errScavengerShort indicates the scavenger located a header-like signature
// with fewer bytes ahead of it than a data descriptor requires, meaning the
// archive is inconsistent (a data descriptor can't fit between the start of
// the scan window and the header that follows it).
var errScavengerShort = shortFieldError("scavenger located a header before a complete data descriptor")

// scavengeStored recovers the payload of a STORED entry whose size was
// deferred to a trailing data descriptor, by scanning forward for the next
// plausible header or descriptor signature. pb must be positioned
// immediately after the entry's Local File Header (name and extra already
// consumed). On success it returns the entry's full payload, the CRC-32 and
// sizes read from the descriptor, and leaves pb positioned at the first
// byte after the descriptor.
//
// buf is the reader's working buffer, reused as the scan window; its
// capacity bounds how much is pulled from the source per refill. A buf no
// larger than the retained tail is replaced by a window of the tail plus
// len(buf) bytes, so every refill still has room for fresh bytes.
func scavengeStored(pb *pushbackReader, usesZIP64 bool, buf []byte) (payload []byte, crc32 uint32, csize, usize uint64, err error) {
	ddLen := dataDescriptorLen(usesZIP64)
	// findSignature leaves the last 4 start positions of a window unchecked,
	// so a header there may still have a whole descriptor in front of it.
	keep := ddLen + 4
	if len(buf) <= keep {
		buf = make([]byte, keep+len(buf))
	}

	var bos bytes.Buffer
	off := 0

	for {
		r, rerr := pb.Read(buf[off:])
		if r <= 0 {
			return nil, 0, 0, 0, truncatedf("scavenger scan", rerr)
		}
		total := off + r

		if total < 4 {
			off = total
			continue
		}

		pos, isDD, matched := findSignature(buf[:total])
		if matched {
			var payloadEnd int
			if isDD {
				payloadEnd = pos
			} else {
				payloadEnd = pos - ddLen
				if payloadEnd < 0 {
					return nil, 0, 0, 0, malformedf("scavenger scan", errScavengerShort)
				}
			}

			bos.Write(buf[:payloadEnd])

			unread := make([]byte, total-payloadEnd)
			copy(unread, buf[payloadEnd:total])
			pb.unread(unread)

			crc32, csize, usize, err = readDataDescriptor(pb, usesZIP64)
			if err != nil {
				return nil, 0, 0, 0, err
			}

			return bos.Bytes(), crc32, csize, usize, nil
		}

		// No signature found in this window. Retain the trailing keep
		// bytes: a data descriptor plus a not-yet-checked next signature
		// could still straddle this refill boundary, so those bytes must
		// remain available to be re-scanned alongside freshly read bytes.
		if total <= keep {
			off = total
			continue
		}

		flush := total - keep
		bos.Write(buf[:flush])
		off = copy(buf, buf[flush:total])
	}
}

// findSignature scans buf for the earliest occurrence of a local/central/end
// header signature or a data-descriptor signature, stopping one byte short
// of the end of buf so a signature split across a refill boundary is never
// falsely rejected as absent. It reports the match position and whether the
// match was the (self-delimiting) data-descriptor signature as opposed to a
// header signature.
func findSignature(buf []byte) (pos int, isDD bool, matched bool) {
	limit := len(buf) - 5
	for i := 0; i <= limit; i++ {
		switch binary.LittleEndian.Uint32(buf[i : i+4]) {
		case sigLocalFile, sigCentralDir, sigEndOfDir:
			return i, false, true
		case sigDataDesc:
			return i, true, true
		}
	}
	return 0, false, false
}
