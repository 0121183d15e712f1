package json

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mcvoid/streamjson/internal/transcode"
)

/*
This table-driven parser descends from Doug Crockford's json-c state
machine, ported to Go and then generalized: values are no longer built
directly on an internal stack but reported as events to a
SemanticActions sink, the comment-dialect states are removed (comment
dialects are out of scope), and the string/number tokenizer decodes
escapes (including \uXXXX surrogate pairs) and classifies numeric
literals instead of handing raw lexemes to strconv directly.
*/

// charClass is an input category: a "column" of the state transition
// table.
type charClass int8

const (
	charSpace charClass = iota
	charLF___
	charWhite
	charLCurB
	charRCurB
	charLSqrB
	charRSqrB
	charColon
	charComma
	charQuote
	charBacks
	charSlash
	charStar_
	charPlus_
	charMinus
	charPoint
	charZero_
	charDigit
	charLow_A
	charLow_B
	charLow_C
	charLow_D
	charLow_E
	charLow_F
	charLow_L
	charLow_N
	charLow_R
	charLow_S
	charLow_T
	charLow_U
	charABCDF
	charCap_E
	charEtc__
	charEof__
	numClasses
	_________ = -1
)

// state names the grammar rule currently being matched.
type state int8

const (
	sr state = iota
	ok
	ob
	ke
	co
	tc
	va
	ar
	st
	ec
	u1
	u2
	u3
	u4
	mi
	ze
	in
	fr
	fs
	e1
	e2
	e3
	t1
	t2
	t3
	f1
	f2
	f3
	f4
	n1
	n2
	n3
	numStates
)

// Negative "states" are actions: a token just completed and the parser
// must report an event and/or adjust the mode stack before continuing.
const (
	__ state = -1 - iota
	ek                   // end key, expect colon
	ep                   // end pair or array element, expect comma or close
	es                   // end string
	sa                   // start array
	so                   // start object
	ea                   // end array
	aa                   // end empty array
	eo                   // end object
	ee                   // end empty object
)

// mode makes the state machine a pushdown automaton: lets us track what
// we're nested inside (array, object-key, object-value) across
// recursive descent.
type mode int8

const (
	modeArray mode = iota
	modeDone
	modeKey
	modeObject
)

var asciiClasses = [129]charClass{
	_________, _________, _________, _________, _________, _________, _________, _________,
	_________, charWhite, charLF___, _________, _________, charWhite, _________, _________,
	_________, _________, _________, _________, _________, _________, _________, _________,
	_________, _________, _________, _________, _________, _________, _________, _________,

	charSpace, charEtc__, charQuote, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__,
	charEtc__, charEtc__, charStar_, charPlus_, charComma, charMinus, charPoint, charSlash,
	charZero_, charDigit, charDigit, charDigit, charDigit, charDigit, charDigit, charDigit,
	charDigit, charDigit, charColon, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__,

	charEtc__, charABCDF, charABCDF, charABCDF, charABCDF, charCap_E, charABCDF, charEtc__,
	charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__,
	charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__, charEtc__,
	charEtc__, charEtc__, charEtc__, charLSqrB, charBacks, charRSqrB, charEtc__, charEtc__,

	charEtc__, charLow_A, charLow_B, charLow_C, charLow_D, charLow_E, charLow_F, charEtc__,
	charEtc__, charEtc__, charEtc__, charEtc__, charLow_L, charEtc__, charLow_N, charEtc__,
	charEtc__, charEtc__, charLow_R, charLow_S, charLow_T, charLow_U, charEtc__, charEtc__,
	charEtc__, charEtc__, charEtc__, charLCurB, charEtc__, charRCurB, charEtc__, charEtc__,
	charEof__,
}

// stateTransitionTable maps a state + input class to a new state.
// Negative entries are actions (see above); charSlash/charStar_ lead
// nowhere but an error, since comment dialects are not supported.
var stateTransitionTable = [numStates][numClasses]state{
	/*                   white                                                        1-9                                                ABCDF    etc */
	/* start  sr*/ {sr, sr, sr, so, __, sa, __, __, __, st, __, __, __, __, mi, __, ze, in, __, __, __, __, __, f1, __, n1, __, __, t1, __, __, __, __, __},
	/* ok     ok*/ {ok, ok, ok, __, eo, __, ea, __, ep, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ok},
	/* object ob*/ {ob, ob, ob, __, ee, __, __, __, __, st, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* key    ke*/ {ke, ke, ke, __, __, __, __, __, __, st, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* colon  co*/ {co, co, co, __, __, __, __, ek, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* comma  tc*/ {tc, tc, tc, so, __, sa, __, __, __, st, __, __, __, __, mi, __, ze, in, __, __, __, __, __, f1, __, n1, __, __, t1, __, __, __, __, __},
	/* value  va*/ {va, va, va, so, __, sa, __, __, __, st, __, __, __, __, mi, __, ze, in, __, __, __, __, __, f1, __, n1, __, __, t1, __, __, __, __, __},
	/* array  ar*/ {ar, ar, ar, so, __, sa, aa, __, __, st, __, __, __, __, mi, __, ze, in, __, __, __, __, __, f1, __, n1, __, __, t1, __, __, __, __, __},
	/* string st*/ {st, __, __, st, st, st, st, st, st, es, ec, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, st, __},
	/* escape ec*/ {__, __, __, __, __, __, __, __, __, st, st, st, __, __, __, __, __, __, __, st, __, __, __, st, __, st, st, __, st, u1, __, __, __, __},
	/* u1     u1*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, u2, u2, u2, u2, u2, u2, u2, u2, __, __, __, __, __, __, u2, u2, __, __},
	/* u2     u2*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, u3, u3, u3, u3, u3, u3, u3, u3, __, __, __, __, __, __, u3, u3, __, __},
	/* u3     u3*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, u4, u4, u4, u4, u4, u4, u4, u4, __, __, __, __, __, __, u4, u4, __, __},
	/* u4     u4*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, st, st, st, st, st, st, st, st, __, __, __, __, __, __, st, st, __, __},
	/* minus  mi*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ze, in, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* zero   ze*/ {ok, ok, ok, __, eo, __, ea, __, ep, __, __, __, __, __, __, fr, __, __, __, __, __, __, e1, __, __, __, __, __, __, __, __, e1, __, ok},
	/* int    in*/ {ok, ok, ok, __, eo, __, ea, __, ep, __, __, __, __, __, __, fr, in, in, __, __, __, __, e1, __, __, __, __, __, __, __, __, e1, __, ok},
	/* frac   fr*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, fs, fs, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* fracs  fs*/ {ok, ok, ok, __, eo, __, ea, __, ep, __, __, __, __, __, __, __, fs, fs, __, __, __, __, e1, __, __, __, __, __, __, __, __, e1, __, ok},
	/* e      e1*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, e2, e2, __, e3, e3, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* ex     e2*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, e3, e3, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* exp    e3*/ {ok, ok, ok, __, eo, __, ea, __, ep, __, __, __, __, __, __, __, e3, e3, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ok},
	/* tr     t1*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, t2, __, __, __, __, __, __, __},
	/* tru    t2*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, t3, __, __, __, __},
	/* true   t3*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ok, __, __, __, __, __, __, __, __, __, __, __},
	/* fa     f1*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, f2, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	/* fal    f2*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, f3, __, __, __, __, __, __, __, __, __},
	/* fals   f3*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, f4, __, __, __, __, __, __},
	/* false  f4*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ok, __, __, __, __, __, __, __, __, __, __, __},
	/* nu     n1*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, n2, __, __, __, __},
	/* nul    n2*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, n3, __, __, __, __, __, __, __, __, __},
	/* null   n3*/ {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, ok, __, __, __, __, __, __, __, __, __},
}

// maxStagingSize bounds how large a decoded string may grow before it
// is flushed to the sink as a chunk; the final chunk always carries
// hasMore=false regardless of size.
const maxStagingSize = 32 * 1024

// parser is the pushdown automaton driving a SemanticActions sink.
type parser struct {
	actions SemanticActions
	opts    Options

	isRunning bool
	isEOF     bool
	state     state

	modeTop   int
	modeStack []mode

	numBuf strBuilder // raw lexeme for numbers/literals

	strOut      []byte // decoded string content accumulated so far
	hexDigits   [4]byte
	hexLen      int
	pendingHigh rune
	havePending bool

	line, col int
	offset    int64

	ctx context.Context
}

// strBuilder is a tiny append-only byte buffer, avoiding the overhead of
// strings.Builder's write-once contract for a buffer that gets reset
// and reused across many literal tokens in one document.
type strBuilder struct{ b []byte }

func (s *strBuilder) WriteRune(r rune) { s.b = append(s.b, string(r)...) }
func (s *strBuilder) Reset()           { s.b = s.b[:0] }
func (s *strBuilder) String() string   { return string(s.b) }

func newParser(actions SemanticActions, opts Options, ctx context.Context) *parser {
	p := &parser{
		actions:   actions,
		opts:      opts,
		isRunning: true,
		state:     sr,
		modeTop:   -1,
		modeStack: make([]mode, 0, opts.MaxNestingDepth+1),
		line:      1,
		col:       1,
		ctx:       ctx,
	}
	p.pushMode(modeDone)
	return p
}

func (p *parser) pushMode(m mode) error {
	p.modeTop++
	if p.modeTop > p.opts.MaxNestingDepth {
		return p.fail(ErrNestingTooDeep, "maximum nesting depth exceeded")
	}
	p.modeStack = append(p.modeStack, m)
	return nil
}

func (p *parser) popMode(want mode) error {
	if len(p.modeStack) == 0 || p.modeStack[len(p.modeStack)-1] != want {
		return p.fail(ErrUnexpectedCharacter, "unmatched closing brace or bracket")
	}
	p.modeStack = p.modeStack[:len(p.modeStack)-1]
	p.modeTop--
	return nil
}

func (p *parser) peekMode() mode {
	if len(p.modeStack) == 0 {
		return modeDone
	}
	return p.modeStack[len(p.modeStack)-1]
}

func (p *parser) fail(code ErrorCode, msg string) error {
	p.isRunning = false
	pe := newParseError(code, msg, p.line, p.col, p.offset)
	p.actions.Error(code, msg)
	return pe
}

// pollSinkError checks whether the sink vetoed the event just delivered
// (e.g. a duplicate-key rejection raised from inside EndObject, which
// itself has no return value to report through). Any SemanticActions
// call that can represent a semantic veto must be followed by this.
func (p *parser) pollSinkError() error {
	code, msg := p.actions.GetError()
	if code == ErrNone {
		return nil
	}
	p.isRunning = false
	return newParseError(code, msg, p.line, p.col, p.offset)
}

func (p *parser) advancePos(r rune, n int) {
	p.offset += int64(n)
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

// consumeCharacter runs one step of the automaton for rune r (or EOF).
func (p *parser) consumeCharacter(r rune) error {
	if p.ctx != nil {
		select {
		case <-p.ctx.Done():
			return p.fail(ErrCancelled, "parse cancelled")
		default:
		}
	}

	var class charClass
	switch {
	case p.isEOF:
		class = charEof__
	case r > 127:
		class = charEtc__
	default:
		class = asciiClasses[r]
	}
	if class == _________ {
		return p.fail(ErrUnexpectedCharacter, fmt.Sprintf("invalid character %q", r))
	}

	next := stateTransitionTable[p.state][class]
	if next >= 0 {
		return p.transition(next, r)
	}
	return p.runAction(next, r)
}

// transition advances to a non-action state, accumulating the raw
// lexeme or decoded string content as appropriate, and emits literal
// events (true/false/null/number) the instant they complete.
func (p *parser) transition(next state, r rune) error {
	switch next {
	case t1, t2, t3, f1, f2, f3, f4, mi, ze, in, fr, fs, e1, e2, e3:
		p.numBuf.WriteRune(r)
	case st:
		switch p.state {
		case u4:
			p.hexDigits[p.hexLen] = byte(r)
			p.hexLen++
			if err := p.completeUnicodeEscape(); err != nil {
				return err
			}
		case ec:
			d, err := decodeSimpleEscape(r)
			if err != nil {
				return p.fail(ErrBadEscape, err.Error())
			}
			p.appendLiteralRune(d)
		case st:
			p.appendLiteralRune(r)
		default:
			// opening quote just consumed; nothing to append yet
		}
	case ec:
		// backslash consumed; nothing to emit yet
	case u1, u2, u3, u4:
		if p.state != ec { // the 'u' itself is not a hex digit
			p.hexDigits[p.hexLen] = byte(r)
			p.hexLen++
		}
	case ok:
		if err := p.acceptLiteralOn(p.state, r); err != nil {
			return err
		}
	}
	p.state = next
	if next == st && len(p.strOut) >= maxStagingSize {
		p.actions.ValueString(p.strOut, true)
		p.strOut = p.strOut[:0]
	}
	return nil
}

// acceptLiteralOn fires the value event for a just-completed true,
// false, null, integer, decimal, or scientific literal.
func (p *parser) acceptLiteralOn(prev state, r rune) error {
	switch prev {
	case n3:
		p.actions.ValueNull()
	case t3:
		p.numBuf.WriteRune(r)
		p.actions.ValueBoolean(true)
	case f4:
		p.numBuf.WriteRune(r)
		p.actions.ValueBoolean(false)
	case ze, in:
		p.actions.ValueNumber(classifyNumber(p.numBuf.String()))
	case fs, e3:
		p.actions.ValueNumber(classifyNumber(p.numBuf.String()))
	default:
		return nil
	}
	p.numBuf.Reset()
	return nil
}

// terminateLiteral closes out a numeric literal that ends on a
// structural character (comma, ']', '}') rather than whitespace/EOF.
func (p *parser) terminateLiteral() {
	switch p.state {
	case ze, in, fs, e3:
		p.actions.ValueNumber(classifyNumber(p.numBuf.String()))
		p.numBuf.Reset()
	}
}

func (p *parser) appendLiteralRune(r rune) {
	var buf [4]byte
	n := encodeUTF8Rune(r, buf[:])
	p.strOut = append(p.strOut, buf[:n]...)
}

func (p *parser) completeUnicodeEscape() error {
	v, err := strconv.ParseUint(string(p.hexDigits[:p.hexLen]), 16, 32)
	p.hexLen = 0
	if err != nil {
		return p.fail(ErrBadUnicodeEscape, "invalid \\u escape")
	}
	cp := rune(v)

	if p.havePending {
		if cp < 0xDC00 || cp > 0xDFFF {
			return p.fail(ErrUnpairedSurrogate, "high surrogate not followed by low surrogate")
		}
		combined := 0x10000 + (p.pendingHigh-0xD800)*0x400 + (cp - 0xDC00)
		p.appendLiteralRune(combined)
		p.havePending = false
		return nil
	}
	if cp >= 0xD800 && cp <= 0xDBFF {
		p.pendingHigh = cp
		p.havePending = true
		return nil
	}
	if cp >= 0xDC00 && cp <= 0xDFFF {
		return p.fail(ErrUnpairedSurrogate, "low surrogate without preceding high surrogate")
	}
	p.appendLiteralRune(cp)
	return nil
}

// runAction handles a completed token that also changes the mode stack
// (structural tokens) or requires multi-step bookkeeping (strings,
// object/array boundaries).
func (p *parser) runAction(a state, r rune) error {
	switch a {
	case ee:
		if err := p.popMode(modeKey); err != nil {
			return err
		}
		p.actions.EndObject()
		if err := p.pollSinkError(); err != nil {
			return err
		}
		p.state = ok
	case eo:
		if err := p.popMode(modeObject); err != nil {
			return err
		}
		p.terminateLiteral()
		p.actions.EndKeyValuePair()
		p.actions.EndObject()
		if err := p.pollSinkError(); err != nil {
			return err
		}
		p.state = ok
	case aa:
		if err := p.popMode(modeArray); err != nil {
			return err
		}
		p.actions.EndArray()
		p.state = ok
	case ea:
		if err := p.popMode(modeArray); err != nil {
			return err
		}
		p.terminateLiteral()
		p.actions.EndArray()
		p.state = ok
	case so:
		if err := p.pushMode(modeKey); err != nil {
			return err
		}
		p.actions.BeginObject()
		p.state = ob
	case sa:
		if err := p.pushMode(modeArray); err != nil {
			return err
		}
		p.actions.BeginArray()
		p.state = ar
	case es:
		if p.havePending {
			return p.fail(ErrUnpairedSurrogate, "high surrogate not followed by low surrogate")
		}
		if p.peekMode() == modeKey {
			p.actions.BeginKeyValuePair(p.strOut, len(p.strOut))
			p.state = co
		} else {
			p.actions.ValueString(p.strOut, false)
			p.state = ok
		}
		p.strOut = p.strOut[:0]
	case ep:
		p.terminateLiteral()
		switch p.peekMode() {
		case modeArray:
			p.state = tc
		case modeObject:
			p.actions.EndKeyValuePair()
			if err := p.popMode(modeObject); err != nil {
				return err
			}
			if err := p.pushMode(modeKey); err != nil {
				return err
			}
			p.state = ke
		default:
			return p.fail(ErrUnexpectedCharacter, "unexpected comma")
		}
	case ek:
		if err := p.popMode(modeKey); err != nil {
			return err
		}
		if err := p.pushMode(modeObject); err != nil {
			return err
		}
		p.state = va
	default:
		return p.fail(ErrUnexpectedCharacter, fmt.Sprintf("unexpected character %q", r))
	}
	return nil
}

func decodeSimpleEscape(r rune) (rune, error) {
	switch r {
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case '/':
		return '/', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	default:
		return 0, fmt.Errorf("invalid escape \\%c", r)
	}
}

func classifyNumber(raw string) NumberDescriptor {
	desc := NumberDescriptor{Raw: raw}
	s := raw
	if len(s) > 0 && s[0] == '-' {
		desc.Negative = true
		s = s[1:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	desc.DigitSpan = s[:i]
	rest := s[i:]

	desc.Class = Integer
	if len(rest) > 0 && rest[0] == '.' {
		desc.Class = Decimal
		rest = rest[1:]
		j := 0
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		desc.FractionSpan = rest[:j]
		rest = rest[j:]
	}
	if len(rest) > 0 && (rest[0] == 'e' || rest[0] == 'E') {
		desc.Class = Scientific
		rest = rest[1:]
		if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
			desc.ExpNegative = rest[0] == '-'
			rest = rest[1:]
		}
		desc.ExpSpan = rest
	}
	return desc
}

// encodeUTF8Rune writes r's UTF-8 encoding into dst and returns the
// byte count. Defers to the transcoder's strict encoder; a scalar it
// rejects is written as a single '?' with no error reported.
func encodeUTF8Rune(r rune, dst []byte) int {
	n, err := transcode.EncodeOne(r, transcode.UTF8, dst)
	if err != nil {
		dst[0] = '?'
		return 1
	}
	return n
}

// run drives the automaton to completion over src, reporting events to
// actions. It returns a *ParseError on malformed input or nil on
// success (actions.Finished will have been called exactly once).
func run(src *transcode.Reader, actions SemanticActions, opts Options, ctx context.Context) error {
	p := newParser(actions, opts, ctx)
	actions.ParseBegin()
	defer actions.ParseEnd()

	for p.isRunning {
		r, n, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.isEOF = true
				p.isRunning = false
			} else {
				return p.fail(ErrMalformedUTF8, err.Error())
			}
		}
		if cerr := p.consumeCharacter(r); cerr != nil {
			return cerr
		}
		if !p.isEOF {
			p.advancePos(r, n)
		}
		if p.state == ok && p.peekMode() == modeDone {
			break // top-level value complete; trailing bytes handled below
		}
	}

	if p.state != ok || p.peekMode() != modeDone {
		return p.fail(ErrUnexpectedEOF, "unexpected end of input")
	}
	if !opts.IgnoreSpuriousTrailingBytes {
		for {
			trailing, _, terr := src.ReadRune()
			if terr != nil {
				break
			}
			switch asciiClasses64(trailing) {
			case charWhite, charSpace, charLF___:
				continue
			default:
				return p.fail(ErrUnexpectedCharacter, "trailing data after top-level value")
			}
		}
	}
	actions.Finished()
	return nil
}

func asciiClasses64(r rune) charClass {
	if r < 0 || r > 127 {
		return charEtc__
	}
	return asciiClasses[r]
}
