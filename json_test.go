package json

import (
	"fmt"
	"testing"
)

func TestTypeStrings(t *testing.T) {
	for _, test := range []struct {
		input    Type
		expected string
	}{
		{Null, typeStrings[Null]},
		{Array, typeStrings[Array]},
		{Object, typeStrings[Object]},
		{Boolean, typeStrings[Boolean]},
		{IntegralNumber, typeStrings[IntegralNumber]},
		{FloatNumber, typeStrings[FloatNumber]},
		{String, typeStrings[String]},
		{numTypes, "<unknown>"},
		{1000, "<unknown>"},
		{-1, "<unknown>"},
	} {
		t.Run(fmt.Sprintf("%v", test.input), func(t *testing.T) {
			actual := test.input.String()
			if test.expected != actual {
				t.Errorf("expected %v got %v", test.expected, actual)
			}
		})
	}
}

func TestType(t *testing.T) {
	for _, test := range []struct {
		input    *Value
		expected Type
	}{
		{NewNull(nil), Null},
		{NewArray(nil), Array},
		{NewObject(nil), Object},
		{NewBool(true, nil), Boolean},
		{NewInt(5, nil), IntegralNumber},
		{NewFloat(5, nil), FloatNumber},
		{NewStringValue("x", nil), String},
		{&Value{typ: numTypes}, typeUnknown},
		{&Value{typ: 1000}, typeUnknown},
		{&Value{typ: -1}, typeUnknown},
	} {
		t.Run(fmt.Sprintf("%v", test.expected), func(t *testing.T) {
			actual := test.input.Type()
			if test.expected != actual {
				t.Errorf("expected %v got %v", test.expected, actual)
			}
		})
	}
}

func TestAsNull(t *testing.T) {
	val := NewNull(nil)
	if _, err := val.AsNull(); err != nil {
		t.Errorf("expected no error got %v", err)
	}
	val = NewBool(true, nil)
	if _, err := val.AsNull(); err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsNumber(t *testing.T) {
	val := NewFloat(5, nil)
	num, err := val.AsNumber()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if num != 5 {
		t.Errorf("expected %v got %v", 5, num)
	}

	val = NewInt(5, nil)
	num, err = val.AsNumber()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if num != 5 {
		t.Errorf("expected %v got %v", 5, num)
	}

	val = NewBool(true, nil)
	_, err = val.AsNumber()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsInteger(t *testing.T) {
	val := NewInt(5, nil)
	num, err := val.AsInteger()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if num != 5 {
		t.Errorf("expected %v got %v", 5, num)
	}

	val = NewBool(true, nil)
	_, err = val.AsInteger()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsString(t *testing.T) {
	val := NewStringValue("5", nil)
	s, err := val.AsString()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if s != "5" {
		t.Errorf("expected %v got %v", "5", s)
	}

	val = NewBool(true, nil)
	_, err = val.AsString()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsBoolean(t *testing.T) {
	val := NewBool(true, nil)
	b, err := val.AsBoolean()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if b != true {
		t.Errorf("expected %v got %v", true, b)
	}

	val = NewNull(nil)
	_, err = val.AsBoolean()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsArray(t *testing.T) {
	val := NewArray(nil)
	if err := val.AppendElement(NewNull(nil)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	a, err := val.AsArray()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	if !a[0].Equal(NewNull(nil)) {
		t.Errorf("expected %v got %v", NewNull(nil), a[0])
	}

	val = NewNull(nil)
	_, err = val.AsArray()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestAsObject(t *testing.T) {
	val := NewObject(nil)
	if _, err := val.SetField("a", NewNull(nil), true); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	o, err := val.AsObject()
	if err != nil {
		t.Errorf("expected no error got %v", err)
	}
	got, _ := o.Get("a")
	if !got.Equal(NewNull(nil)) {
		t.Errorf("expected %v got %v", NewNull(nil), got)
	}

	val = NewNull(nil)
	_, err = val.AsObject()
	if err == nil {
		t.Errorf("expected error got none")
	}
}

func TestString(t *testing.T) {
	arr := NewArray(nil)
	for _, e := range []*Value{
		NewNull(nil),
		NewInt(-5, nil),
		NewStringValue("-5.12", nil),
		NewBool(true, nil),
	} {
		if err := arr.AppendElement(e); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}

	obj := NewObject(nil)
	for _, kv := range []struct {
		k string
		v *Value
	}{
		{"a", NewNull(nil)},
		{"b", NewInt(-5, nil)},
		{"c", NewStringValue("-5.12", nil)},
		{"d", NewBool(true, nil)},
	} {
		if _, err := obj.SetField(kv.k, kv.v, true); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}

	for _, test := range []struct {
		input    *Value
		expected string
	}{
		{NewNull(nil), "null"},
		{NewInt(-5, nil), `-5`},
		{NewFloat(-5, nil), `-5`},
		{NewFloat(-5.1, nil), `-5.1`},
		{NewFloat(-5.12, nil), `-5.12`},
		{NewStringValue("-5.12", nil), `"-5.12"`},
		{NewBool(true, nil), `true`},
		{NewBool(false, nil), `false`},
		{arr, `[null, -5, "-5.12", true]`},
		{obj, `{"a": null, "b": -5, "c": "-5.12", "d": true}`},
		{&Value{typ: numTypes, i: -5}, `<unknown>`},
	} {
		t.Run(fmt.Sprintf("%v", test.expected), func(t *testing.T) {
			actual := test.input.String()
			if test.expected != actual {
				t.Errorf("expected %v got %v", test.expected, actual)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	val, err := ParseString(`[[[true, false]]]`)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	for _, test := range []struct {
		actual   *Value
		expected *Value
	}{
		{val.Index(0).Index(0).Index(0), NewBool(true, nil)},
		{val.Index(0).Index(0).Index(1), NewBool(false, nil)},
		{val.Index(0).Index(0).Index(2), &Value{typ: typeUnknown}},
		{val.Index(0).Index(1).Index(2), &Value{typ: typeUnknown}},
		{val.Index(-1).Index(1).Index(2), &Value{typ: typeUnknown}},
	} {
		t.Run(fmt.Sprintf("%v", test.actual), func(t *testing.T) {
			if test.actual.Type() != test.expected.Type() {
				t.Fatalf("expected type %v got %v", test.expected.Type(), test.actual.Type())
			}
			if test.expected.Type() != typeUnknown && !test.actual.Equal(test.expected) {
				t.Errorf("expected %v\ngot %v", test.expected, test.actual)
			}
		})
	}
}

func TestKey(t *testing.T) {
	val, err := ParseString(`{"a": {"b": {"c": true, "d":false}}}`)
	if err != nil {
		t.Fatalf("expected no error got %v", err)
	}
	for _, test := range []struct {
		actual   *Value
		expected *Value
	}{
		{val.Key("a").Key("b").Key("c"), NewBool(true, nil)},
		{val.Key("a").Key("b").Key("d"), NewBool(false, nil)},
		{val.Key("a").Key("b").Key("e"), &Value{typ: typeUnknown}},
		{val.Key("a").Key("e").Key("d"), &Value{typ: typeUnknown}},
		{val.Key("e").Key("b").Key("d"), &Value{typ: typeUnknown}},
	} {
		t.Run(fmt.Sprintf("%v", test.actual), func(t *testing.T) {
			if test.actual.Type() != test.expected.Type() {
				t.Fatalf("expected type %v got %v", test.expected.Type(), test.actual.Type())
			}
			if test.expected.Type() != typeUnknown && !test.actual.Equal(test.expected) {
				t.Errorf("expected %v\ngot %v", test.expected, test.actual)
			}
		})
	}
}

func TestParseScalarLiterals(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected *Value
	}{
		{"null", NewNull(nil)},
		{"true", NewBool(true, nil)},
		{"false", NewBool(false, nil)},
		{"0", NewInt(0, nil)},
		{"-17", NewInt(-17, nil)},
		{"3.25", NewFloat(3.25, nil)},
		{"1e3", NewFloat(1000, nil)},
		{`"hello"`, NewStringValue("hello", nil)},
		{`"a\"b\\c\/d"`, NewStringValue("a\"b\\c/d", nil)},
		{`"Aé"`, NewStringValue("Aé", nil)},
		{`"😀"`, NewStringValue("\U0001F600", nil)},
	} {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseString(test.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(test.expected) {
				t.Errorf("expected %v got %v", test.expected, got)
			}
		})
	}
}

func TestParseRejectsUnpairedSurrogate(t *testing.T) {
	_, err := ParseString(`"\ud83d"`)
	if err == nil {
		t.Fatal("expected error for unpaired surrogate")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Code != ErrUnpairedSurrogate {
		t.Errorf("expected ErrUnpairedSurrogate got %v", pe.Code)
	}
}

func TestParseDuplicateKeyRejected(t *testing.T) {
	_, err := ParseString(`{"a": 1, "a": 2}`)
	if err == nil {
		t.Fatal("expected duplicate-key error")
	}
}

func TestParseDuplicateKeyAllowedWhenDisabled(t *testing.T) {
	got, err := ParseString(`{"a": 1, "a": 2}`, WithCheckDuplicateKey(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewObject(nil)
	if _, err := want.SetField("a", NewInt(2, nil), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("expected %v got %v", want, got)
	}
}

func TestParseNestingTooDeep(t *testing.T) {
	deep := ""
	for i := 0; i < 10; i++ {
		deep += "["
	}
	for i := 0; i < 10; i++ {
		deep += "]"
	}
	_, err := ParseString(deep, WithMaxNestingDepth(5))
	if err == nil {
		t.Fatal("expected nesting-too-deep error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Code != ErrNestingTooDeep {
		t.Errorf("expected ErrNestingTooDeep got %v", pe.Code)
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	_, err := ParseString(`1 2`)
	if err == nil {
		t.Fatal("expected trailing-data error")
	}
}

func TestParseIgnoresTrailingBytesWhenConfigured(t *testing.T) {
	got, err := ParseString(`1 garbage`, WithIgnoreSpuriousTrailingBytes(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(NewInt(1, nil)) {
		t.Errorf("expected 1 got %v", got)
	}
}
