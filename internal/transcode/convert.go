package transcode

// ConvertOne decodes exactly one Unicode scalar value from src, which is
// assumed to hold code units of enc. It returns the number of bytes
// consumed. This is the validating variant; Unchecked below wraps it
// without an error result.
func ConvertOne(src []byte, enc Encoding) (cp rune, consumed int, err error) {
	switch enc {
	case UTF8:
		return decodeUTF8(src)
	case UTF16LE:
		return decodeUTF16(src, false)
	case UTF16BE:
		return decodeUTF16(src, true)
	case UTF32LE:
		return decodeUTF32(src, false)
	case UTF32BE:
		return decodeUTF32(src, true)
	default:
		return 0, 0, errf(CodeInvalidCodePoint, "unknown encoding")
	}
}

// Unchecked decodes one scalar and reports no error. It runs the same
// validating decoder as ConvertOne and discards the error: on malformed
// input it returns cp 0 and advances by the encoding's unit width (at
// least one byte). It skips none of ConvertOne's checks, so it is no
// faster than ConvertOne.
func Unchecked(src []byte, enc Encoding) (cp rune, consumed int) {
	cp, consumed, _ = ConvertOne(src, enc)
	if consumed == 0 {
		// best-effort: advance by the encoding's minimum unit width so a
		// caller that ignores the (impossible, by contract) error still
		// makes progress instead of looping.
		consumed = enc.UnitWidth()
		if consumed == 0 {
			consumed = 1
		}
	}
	return cp, consumed
}

// EncodeOne writes cp into dst using enc, returning the number of bytes
// written. dst must be large enough (4 bytes is always sufficient).
func EncodeOne(cp rune, enc Encoding, dst []byte) (int, error) {
	switch enc {
	case UTF8:
		return encodeUTF8(cp, dst)
	case UTF16LE:
		return encodeUTF16(cp, false, dst)
	case UTF16BE:
		return encodeUTF16(cp, true, dst)
	case UTF32LE:
		return encodeUTF32(cp, false, dst)
	case UTF32BE:
		return encodeUTF32(cp, true, dst)
	default:
		return 0, errf(CodeInvalidCodePoint, "unknown encoding")
	}
}
