package json

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mcvoid/streamjson/internal/arena"
	"github.com/mcvoid/streamjson/internal/transcode"
)

// SemanticActions is the abstract event sink the parser drives: it
// receives exactly one event call per grammar token of a well-formed
// JSON text, in an order that exactly describes that text. On
// malformed input the parser calls Error exactly once and stops.
type SemanticActions interface {
	ParseBegin()
	ParseEnd()
	Finished()

	BeginArray()
	EndArray()
	BeginObject()
	EndObject()
	BeginKeyValuePair(keyBuf []byte, n int)
	EndKeyValuePair()

	ValueString(buf []byte, hasMore bool)
	ValueNumber(desc NumberDescriptor)
	ValueBoolean(b bool)
	ValueNull()

	Print(w io.Writer) error
	Clear(shrink bool)

	Error(code ErrorCode, msg string)
	GetError() (ErrorCode, string)
}

// Option configures an Options value via the functional-options pattern.
type Option func(*Options)

// Options controls both the grammar's tolerances and the default
// value-building backend's behavior.
type Options struct {
	CheckDuplicateKey           bool
	KeepStringCacheOnClear      bool
	CacheDataStrings            bool
	UseArena                    bool
	NumberPolicy                NumberPolicy
	MaxNestingDepth             int
	IgnoreSpuriousTrailingBytes bool
	Logger                      zerolog.Logger
	Encoding                    transcode.Encoding
}

func defaultOptions() Options {
	return Options{
		CheckDuplicateKey: true,
		UseArena:          true,
		NumberPolicy:      Auto,
		MaxNestingDepth:   512,
		Logger:            zerolog.Nop(),
		Encoding:          transcode.UnknownEncoding,
	}
}

// WithCheckDuplicateKey rejects (true) or silently overwrites (false) a
// repeated object key. Default true.
func WithCheckDuplicateKey(b bool) Option { return func(o *Options) { o.CheckDuplicateKey = b } }

// WithKeepStringCacheOnClear keeps the interned-key table across a
// Clear call, whatever its shrink argument, instead of dropping it with
// the arena.
func WithKeepStringCacheOnClear(b bool) Option {
	return func(o *Options) { o.KeepStringCacheOnClear = b }
}

// WithCacheDataStrings extends key interning to value strings as well.
func WithCacheDataStrings(b bool) Option { return func(o *Options) { o.CacheDataStrings = b } }

// WithArena toggles arena-backed allocation for the parsed tree. Default
// true; false falls back to ordinary garbage-collected Values.
func WithArena(b bool) Option { return func(o *Options) { o.UseArena = b } }

// WithNumberPolicy selects the overflow tier used when materializing
// numeric literals. Default Auto.
func WithNumberPolicy(p NumberPolicy) Option { return func(o *Options) { o.NumberPolicy = p } }

// WithMaxNestingDepth overrides the default nesting-depth guard (512).
func WithMaxNestingDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxNestingDepth = n
		}
	}
}

// WithIgnoreSpuriousTrailingBytes allows bytes after the single parsed
// value instead of treating them as an error.
func WithIgnoreSpuriousTrailingBytes(b bool) Option {
	return func(o *Options) { o.IgnoreSpuriousTrailingBytes = b }
}

// WithLogger installs a structured logger; the default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithEncoding declares the source's code-unit encoding explicitly,
// instead of relying on BOM/heuristic auto-detection.
func WithEncoding(e transcode.Encoding) Option { return func(o *Options) { o.Encoding = e } }

// zerologWarner adapts a zerolog.Logger to the warner interface numeric
// tiering uses for soft out-of-range degradation notices.
type zerologWarner struct{ log zerolog.Logger }

func (w zerologWarner) Warn(desc NumberDescriptor, msg string) {
	w.log.Warn().Str("literal", desc.Raw).Msg(msg)
}

// valueBuilder is the default SemanticActions backend: it builds a
// Value tree using a build stack of in-progress values and a marker
// stack recording where each open array/object begins.
type valueBuilder struct {
	opts  Options
	arena *arena.Arena

	build   []*Value
	markers []int

	staging []byte // accumulates chunked ValueString calls
	pendKey string // not used: BeginKeyValuePair pushes each key onto the build stack

	result  *Value
	errCode ErrorCode
	errMsg  string
}

// newValueBuilder constructs the default backend per opts.
func newValueBuilder(opts Options) *valueBuilder {
	b := &valueBuilder{opts: opts}
	if opts.UseArena {
		b.arena = arena.New(0)
	}
	return b
}

func (b *valueBuilder) warner() warner { return zerologWarner{log: b.opts.Logger} }

func (b *valueBuilder) push(v *Value) { b.build = append(b.build, v) }

func (b *valueBuilder) pop() *Value {
	n := len(b.build) - 1
	v := b.build[n]
	b.build = b.build[:n]
	return v
}

func (b *valueBuilder) pushMarker() { b.markers = append(b.markers, len(b.build)-1) }

func (b *valueBuilder) popMarker() int {
	n := len(b.markers) - 1
	m := b.markers[n]
	b.markers = b.markers[:n]
	return m
}

func (b *valueBuilder) ParseBegin() {
	b.build = b.build[:0]
	b.markers = b.markers[:0]
	b.staging = b.staging[:0]
	b.result = nil
	b.errCode, b.errMsg = ErrNone, ""
}

func (b *valueBuilder) ParseEnd() {}

func (b *valueBuilder) Finished() {
	if len(b.build) == 1 {
		b.result = b.build[0]
	}
}

// Result returns the single parsed value, or nil if parsing did not
// finish with exactly one value on the build stack.
func (b *valueBuilder) Result() *Value { return b.result }

func (b *valueBuilder) BeginArray() {
	b.push(NewArray(b.arena))
	b.pushMarker()
}

func (b *valueBuilder) EndArray() {
	marker := b.popMarker()
	elems := append([]*Value(nil), b.build[marker+1:]...)
	b.build = b.build[:marker]

	arr := NewArray(b.arena)
	for _, e := range elems {
		_ = arr.AppendElement(e)
	}
	b.push(arr)
}

func (b *valueBuilder) BeginObject() {
	b.push(NewObject(b.arena))
	b.pushMarker()
}

func (b *valueBuilder) EndObject() {
	marker := b.popMarker()
	pairs := append([]*Value(nil), b.build[marker+1:]...)
	b.build = b.build[:marker]

	obj := NewObject(b.arena)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, val := pairs[i], pairs[i+1]
		dup, _ := obj.SetField(key.s, val, b.opts.CheckDuplicateKey)
		if dup {
			b.Error(ErrDuplicateKey, fmt.Sprintf("duplicate key %q", key.s))
			return
		}
	}
	b.push(obj)
}

func (b *valueBuilder) BeginKeyValuePair(keyBuf []byte, n int) {
	key := string(keyBuf[:n])
	if b.arena != nil {
		key = b.arena.Intern(key)
		b.push(&Value{typ: String, s: key, arena: b.arena})
		return
	}
	b.push(NewStringValue(key, nil))
}

func (b *valueBuilder) EndKeyValuePair() {}

func (b *valueBuilder) ValueString(buf []byte, hasMore bool) {
	if hasMore {
		b.staging = append(b.staging, buf...)
		return
	}
	var s string
	if len(b.staging) > 0 {
		b.staging = append(b.staging, buf...)
		s = string(b.staging)
		b.staging = b.staging[:0]
	} else {
		s = string(buf)
	}
	if b.arena != nil && b.opts.CacheDataStrings {
		b.push(&Value{typ: String, s: b.arena.Intern(s), arena: b.arena})
		return
	}
	b.push(NewStringValue(s, b.arena))
}

func (b *valueBuilder) ValueNumber(desc NumberDescriptor) {
	b.push(BuildNumberValue(desc, b.opts.NumberPolicy, b.arena, b.warner()))
}

func (b *valueBuilder) ValueBoolean(v bool) { b.push(NewBool(v, b.arena)) }

func (b *valueBuilder) ValueNull() { b.push(NewNull(b.arena)) }

func (b *valueBuilder) Print(w io.Writer) error {
	if b.result == nil {
		return fmt.Errorf("%w: nothing to print", ErrParse)
	}
	return Write(w, b.result, CompactStyle())
}

func (b *valueBuilder) Clear(shrink bool) {
	b.build = b.build[:0]
	b.markers = b.markers[:0]
	b.staging = b.staging[:0]
	b.result = nil
	if b.arena != nil {
		b.arena.Reset(shrink, b.opts.KeepStringCacheOnClear)
	}
}

func (b *valueBuilder) Error(code ErrorCode, msg string) {
	b.errCode, b.errMsg = code, msg
}

func (b *valueBuilder) GetError() (ErrorCode, string) { return b.errCode, b.errMsg }
