package transcode

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TransformReader returns a best-effort UTF-8 view of src, assumed to
// hold code units of enc, built on golang.org/x/text, with noncharacter
// code points stripped. Unlike Reader, it does not guarantee the
// fail-fast behavior the real parser input path requires: x/text's
// decoders substitute U+FFFD for malformed sequences rather than
// erroring. It exists for non-correctness-critical callers — the CLI's
// "--preview" text dump of a source file before parsing it for real.
func TransformReader(src io.Reader, enc Encoding) io.Reader {
	var e encoding.Encoding
	switch enc {
	case UTF16LE:
		e = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		e = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF8:
		e = unicode.UTF8
	default:
		// UTF-32 has no x/text codec; fall through untransformed and let
		// the caller's own strict Reader do the real work.
		return src
	}
	decoded := transform.NewReader(src, e.NewDecoder())
	return transform.NewReader(decoded, runes.Remove(runes.Predicate(IsNoncharacter)))
}
