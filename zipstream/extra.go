package zipstream

// ExtraField is one (id, payload) record parsed out of a Local File Header's
// extra-field blob.
type ExtraField struct {
	ID   uint16
	Data []byte
}

// parseExtraFields walks a raw extra-field blob into typed records. Any
// trailing bytes too short to form a complete (id, size) pair are silently
// dropped, matching the tolerant behaviour of the central-directory readers
// in this corpus (e.g. alec-rabold/zipspy's ReadDirectoryHeader) rather than
// failing the whole entry over a malformed vendor extra record.
func parseExtraFields(b []byte) []ExtraField {
	var fields []ExtraField

	buf := readBuf(b)
	for len(buf) >= 4 {
		id := buf.uint16()
		size := int(buf.uint16())
		if size > len(buf) {
			break
		}

		fields = append(fields, ExtraField{ID: id, Data: buf.sub(size)})
	}

	return fields
}

// findExtraField returns the payload of the first record with the given id.
func findExtraField(fields []ExtraField, id uint16) ([]byte, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f.Data, true
		}
	}
	return nil, false
}

// parseZIP64Extra reads the 64-bit size fields out of a ZIP64 Extended
// Information record. Per the ZIP64 format, only the fields whose 32-bit LFH
// counterpart held the sentinel value are present, and they appear in the
// fixed order: uncompressed size, then compressed size. The local header
// never carries the relative-header-offset or disk-number fields that can
// also follow in a central-directory ZIP64 record, so they are not parsed
// here.
func parseZIP64Extra(data []byte, needUSize, needCSize bool) (usize, csize uint64, err error) {
	buf := readBuf(data)

	if needUSize {
		if len(buf) < 8 {
			return 0, 0, malformedf("zip64 extra field", errShortZip64)
		}
		usize = buf.uint64()
	}

	if needCSize {
		if len(buf) < 8 {
			return 0, 0, malformedf("zip64 extra field", errShortZip64)
		}
		csize = buf.uint64()
	}

	return usize, csize, nil
}

var errShortZip64 = shortFieldError("zip64 extended information record shorter than the sizes it must supply")

type shortFieldError string

func (e shortFieldError) Error() string { return string(e) }

// unicodePathExtra is the decoded form of an Info-ZIP Unicode Path extra
// record (header id 0x7075): a version byte, the CRC-32 of the original
// (non-UTF-8) name this record overrides, and the UTF-8 name itself.
type unicodePathExtra struct {
	version  byte
	nameCRC  uint32
	nameUTF8 string
}

func parseUnicodePathExtra(data []byte) (unicodePathExtra, bool) {
	if len(data) < 5 {
		return unicodePathExtra{}, false
	}

	buf := readBuf(data)
	return unicodePathExtra{
		version:  buf.uint8(),
		nameCRC:  buf.uint32(),
		nameUTF8: string(buf),
	}, true
}
