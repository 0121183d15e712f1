package json

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWarner struct {
	calls []string
}

func (r *recordingWarner) Warn(desc NumberDescriptor, msg string) {
	r.calls = append(r.calls, msg)
}

func descFor(raw string, negative bool) NumberDescriptor {
	return NumberDescriptor{Class: Integer, Raw: raw, Negative: negative}
}

func TestBuildNumberValueAutoFitsInt32(t *testing.T) {
	v := BuildNumberValue(descFor("42", false), Auto, nil, nil)
	assert.Equal(t, IntegralNumber, v.Type())
	assert.Equal(t, int64(42), v.MustAsInteger())
}

func TestBuildNumberValueAutoFitsInt64NotInt32(t *testing.T) {
	raw := "9999999999"
	v := BuildNumberValue(descFor(raw, false), Auto, nil, nil)
	assert.Equal(t, IntegralNumber, v.Type())
	assert.Equal(t, int64(9999999999), v.MustAsInteger())
}

func TestBuildNumberValueAutoInt128BandWarnsAndReturnsInt64(t *testing.T) {
	w := &recordingWarner{}
	// Exceeds int64 max (~1.8e19) but well within int128 range.
	v := BuildNumberValue(descFor("99999999999999999999", false), Auto, nil, w)
	require.Equal(t, IntegralNumber, v.Type())
	assert.Equal(t, int64(math.MaxInt64), v.MustAsInteger())
	require.Len(t, w.calls, 1)
	assert.Contains(t, w.calls[0], "int128")
}

func TestBuildNumberValueAutoInt128BandNegativeClampsToMinInt64(t *testing.T) {
	w := &recordingWarner{}
	v := BuildNumberValue(descFor("-99999999999999999999", true), Auto, nil, w)
	require.Equal(t, IntegralNumber, v.Type())
	assert.Equal(t, int64(math.MinInt64), v.MustAsInteger())
	require.Len(t, w.calls, 1)
}

func TestBuildNumberValueAutoBeyondInt128DegradesToDouble(t *testing.T) {
	w := &recordingWarner{}
	raw := "9" + repeat("9", 50)
	v := BuildNumberValue(descFor(raw, false), Auto, nil, w)
	require.Equal(t, FloatNumber, v.Type())
	require.Len(t, w.calls, 1)
	assert.Contains(t, w.calls[0], "double")
}

func TestBuildNumberValueAutoDecimalInt128BandReturnsExactString(t *testing.T) {
	raw := "99999999999999999999"
	v := BuildNumberValue(descFor(raw, false), AutoDecimal, nil, nil)
	require.Equal(t, String, v.Type())
	assert.Equal(t, raw, v.MustAsString())
}

func TestBuildNumberValueStringPolicyPreservesRawLexeme(t *testing.T) {
	v := BuildNumberValue(descFor("007", false), StringPolicy, nil, nil)
	require.Equal(t, String, v.Type())
	assert.Equal(t, "007", v.MustAsString())
}

func TestBuildNumberValueScientificAlwaysFloat(t *testing.T) {
	desc := NumberDescriptor{Class: Scientific, Raw: "1e3"}
	v := BuildNumberValue(desc, Auto, nil, nil)
	require.Equal(t, FloatNumber, v.Type())
	assert.Equal(t, 1000.0, v.MustAsNumber())
}

func TestBuildNumberValueDecimalInRangeIsExactFloat(t *testing.T) {
	desc := NumberDescriptor{Class: Decimal, Raw: "3.25"}
	v := BuildNumberValue(desc, Auto, nil, nil)
	require.Equal(t, FloatNumber, v.Type())
	assert.Equal(t, 3.25, v.MustAsNumber())
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
