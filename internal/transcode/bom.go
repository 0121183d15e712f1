package transcode

// DetectBOM checks for a byte-order mark, then falls back to RFC 7159
// §3's "two-ASCII heuristic" for BOM-less input: with no BOM present,
// the encoding is inferred from which of the first four bytes are zero
// (a zero byte can only appear in the non-payload lanes of a UTF-16/32
// code unit for text whose first character is ASCII, which in JSON is
// always true since a text begins with whitespace, '{', '[', '"', a
// digit, '-', or one of t/f/n).
func DetectBOM(data []byte) (enc Encoding, bomLen int, detected bool) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return UTF8, 3, true
	case len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0xFE && data[3] == 0xFF:
		return UTF32BE, 4, true
	case len(data) >= 4 && data[0] == 0xFF && data[1] == 0xFE && data[2] == 0x00 && data[3] == 0x00:
		return UTF32LE, 4, true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return UTF16BE, 2, true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return UTF16LE, 2, true
	}

	if len(data) < 4 {
		if len(data) >= 1 {
			return UTF8, 0, false
		}
		return UnknownEncoding, 0, false
	}

	b := [4]bool{data[0] == 0, data[1] == 0, data[2] == 0, data[3] == 0}
	switch {
	case b[0] && b[1] && b[2] && !b[3]:
		// 00 00 00 xx
		return UTF32BE, 0, false
	case !b[0] && b[1] && b[2] && b[3]:
		// xx 00 00 00
		return UTF32LE, 0, false
	case b[0] && !b[1] && b[2] && !b[3]:
		// 00 xx 00 xx
		return UTF16BE, 0, false
	case !b[0] && b[1] && !b[2] && b[3]:
		// xx 00 xx 00
		return UTF16LE, 0, false
	default:
		return UTF8, 0, false
	}
}
