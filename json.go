// Package json implements a streaming, semantic-actions-driven JSON
// codec: a table-driven grammar scanner that decodes any of the five
// Unicode transfer encodings and reports grammar events to a pluggable
// sink, plus a default tree-building sink and text generator.
package json

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mcvoid/streamjson/internal/transcode"
)

// Parse reads a complete JSON text from r and returns the parsed value
// tree, using the default value-building sink.
func Parse(r io.Reader, opts ...Option) (*Value, error) {
	return ParseContext(context.Background(), r, opts...)
}

// ParseContext is Parse with cancellation: ctx is polled before each
// input character is processed, so a cancelled ctx ends the parse
// promptly with an ErrCancelled *ParseError instead of running to
// completion or EOF.
func ParseContext(ctx context.Context, r io.Reader, opts ...Option) (*Value, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	builder := newValueBuilder(o)
	if err := parseWith(ctx, r, builder, o); err != nil {
		return nil, err
	}
	return builder.Result(), nil
}

// ParseString parses s in its entirety.
func ParseString(s string, opts ...Option) (*Value, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseBytes parses b in its entirety.
func ParseBytes(b []byte, opts ...Option) (*Value, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// ParseWith drives actions directly instead of building a Value tree;
// this is the entry point for a caller supplying its own SemanticActions
// implementation (e.g. one that projects straight into an application's
// own types, or discards everything except a running statistic).
func ParseWith(r io.Reader, actions SemanticActions, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return parseWith(context.Background(), r, actions, o)
}

// parseWith resolves the source's encoding (explicit option, else BOM
// sniff, else the first-four-byte heuristic, which falls back to UTF-8)
// and drives the grammar scanner over it.
func parseWith(ctx context.Context, r io.Reader, actions SemanticActions, o Options) error {
	enc, br, err := resolveEncoding(r, o.Encoding)
	if err != nil {
		return err
	}
	tr := transcode.NewReader(br, enc)
	return run(tr, actions, o, ctx)
}

// resolveEncoding sniffs a leading BOM (if any) and reconciles it
// against an explicitly declared encoding: an explicit encoding wins
// when no BOM is present, but a present BOM that contradicts it is an
// error rather than a silent override, since the two disagreeing is
// almost always a caller mistake.
func resolveEncoding(r io.Reader, declared transcode.Encoding) (transcode.Encoding, io.Reader, error) {
	var peek [4]byte
	n, _ := io.ReadFull(r, peek[:])
	head := peek[:n]

	detected, bomLen, found := transcode.DetectBOM(head)
	rest := io.MultiReader(bytes.NewReader(head[bomLen:]), r)

	switch {
	case found && declared != transcode.UnknownEncoding && declared != detected:
		return 0, nil, fmt.Errorf("%w: declared encoding %s conflicts with detected BOM %s", ErrParse, declared, detected)
	case found:
		return detected, rest, nil
	case declared != transcode.UnknownEncoding:
		return declared, io.MultiReader(bytes.NewReader(head), r), nil
	default:
		if detected == transcode.UnknownEncoding {
			detected = transcode.UTF8
		}
		return detected, io.MultiReader(bytes.NewReader(head), r), nil
	}
}
