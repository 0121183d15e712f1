package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCompactScalarAndContainers(t *testing.T) {
	obj := NewObject(nil)
	_, err := obj.SetField("a", NewInt(1, nil), true)
	require.NoError(t, err)
	_, err = obj.SetField("b", NewArray(nil), true)
	require.NoError(t, err)
	require.NoError(t, obj.Key("b").AppendElement(NewBool(true, nil)))
	require.NoError(t, obj.Key("b").AppendElement(NewNull(nil)))

	out, err := Marshal(obj, CompactStyle())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[true,null]}`, string(out))
}

func TestMarshalIndentCapsAtEight(t *testing.T) {
	arr := NewArray(nil)
	require.NoError(t, arr.AppendElement(NewInt(1, nil)))

	out, err := Marshal(arr, Indent(100))
	require.NoError(t, err)
	assert.Equal(t, "[\n        1\n]", string(out))
}

func TestMarshalNeverEmitsTrailingComma(t *testing.T) {
	arr := NewArray(nil)
	require.NoError(t, arr.AppendElement(NewInt(1, nil)))
	require.NoError(t, arr.AppendElement(NewInt(2, nil)))

	out, err := Marshal(arr, CompactStyle())
	require.NoError(t, err)
	assert.NotContains(t, string(out), ",]")
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	v, err := ParseString(`{"x": [1, 2.5, "hi", true, null]}`)
	require.NoError(t, err)

	out, err := Marshal(v, CompactStyle())
	require.NoError(t, err)

	v2, err := ParseString(string(out))
	require.NoError(t, err)
	assert.True(t, v.Equal(v2))
}
