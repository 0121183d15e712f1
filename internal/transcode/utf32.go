package transcode

// UTF-32 has no dedicated codec in golang.org/x/text; it is rare enough
// on the wire that the ecosystem leaves it to callers, so this file
// hand-rolls the fixed-width case directly against the scalar validity
// rule (see DESIGN.md for the standard-library-only rationale).

func unit32(src []byte, be bool) uint32 {
	if be {
		return uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3])
	}
	return uint32(src[3])<<24 | uint32(src[2])<<16 | uint32(src[1])<<8 | uint32(src[0])
}

func putUnit32(dst []byte, u uint32, be bool) {
	if be {
		dst[0] = byte(u >> 24)
		dst[1] = byte(u >> 16)
		dst[2] = byte(u >> 8)
		dst[3] = byte(u)
		return
	}
	dst[0] = byte(u)
	dst[1] = byte(u >> 8)
	dst[2] = byte(u >> 16)
	dst[3] = byte(u >> 24)
}

func decodeUTF32(src []byte, be bool) (cp rune, consumed int, err error) {
	if len(src) < 4 {
		return 0, 0, errf(CodeMisalignedBuffer, "truncated UTF-32 unit")
	}
	u := unit32(src, be)
	cp = rune(u)
	if !IsValidScalar(cp) {
		if cp >= surrogateLo && cp <= surrogateHi {
			return 0, 0, errf(CodeUnpairedSurrogate, "UTF-32 unit encodes surrogate U+%04X", cp)
		}
		return 0, 0, errf(CodeInvalidCodePoint, "UTF-32 unit U+%08X out of range", u)
	}
	return cp, 4, nil
}

func encodeUTF32(cp rune, be bool, dst []byte) (int, error) {
	if !IsValidScalar(cp) {
		return 0, errf(CodeInvalidCodePoint, "cannot encode invalid scalar U+%04X", cp)
	}
	putUnit32(dst, uint32(cp), be)
	return 4, nil
}
