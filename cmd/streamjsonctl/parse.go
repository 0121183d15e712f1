package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	json "github.com/mcvoid/streamjson"
	"github.com/mcvoid/streamjson/internal/transcode"
)

func newParseCmd() *cobra.Command {
	var (
		format           string
		indent           int
		maxDepth         int
		numberPolicy     string
		encoding         string
		noCheckDup       bool
		ignoreTrailing   bool
		cacheDataStrings bool
		verbose          bool
		preview          bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a JSON document and re-render it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
			if !verbose {
				logger = logger.Level(zerolog.WarnLevel)
			}

			enc, err := parseEncodingFlag(encoding)
			if err != nil {
				return err
			}
			policy, err := parseNumberPolicyFlag(numberPolicy)
			if err != nil {
				return err
			}

			src, closeFn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeFn()

			if preview {
				data, err := io.ReadAll(src)
				if err != nil {
					return err
				}
				previewEnc := enc
				if previewEnc == transcode.UnknownEncoding {
					previewEnc = transcode.UTF8
				}
				text, err := io.ReadAll(transcode.TransformReader(bytes.NewReader(data), previewEnc))
				if err != nil {
					return fmt.Errorf("preview: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "--- preview (best-effort decode, noncharacters stripped) ---\n%s\n--- end preview ---\n", text)
				src = bytes.NewReader(data)
			}

			val, err := json.Parse(src,
				json.WithLogger(logger),
				json.WithMaxNestingDepth(maxDepth),
				json.WithNumberPolicy(policy),
				json.WithEncoding(enc),
				json.WithCheckDuplicateKey(!noCheckDup),
				json.WithIgnoreSpuriousTrailingBytes(ignoreTrailing),
				json.WithCacheDataStrings(cacheDataStrings),
			)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}

			switch format {
			case "compact":
				return json.Write(cmd.OutOrStdout(), val, json.CompactStyle())
			case "indent":
				return json.Write(cmd.OutOrStdout(), val, json.Indent(indent))
			case "yaml":
				any, err := valueToAny(val)
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(any)
			default:
				return fmt.Errorf("unknown --format %q (want compact, indent, or yaml)", format)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&format, "format", "compact", "output format: compact, indent, yaml")
	flags.IntVar(&indent, "indent-width", 2, "spaces per indent level when --format=indent (capped at 8)")
	flags.IntVar(&maxDepth, "max-depth", 512, "maximum array/object nesting depth")
	flags.StringVar(&numberPolicy, "number-policy", "auto", "numeric overflow tier: auto, auto-decimal, string")
	flags.StringVar(&encoding, "encoding", "auto", "source encoding: auto, utf8, utf16le, utf16be, utf32le, utf32be")
	flags.BoolVar(&noCheckDup, "allow-duplicate-keys", false, "overwrite instead of rejecting a repeated object key")
	flags.BoolVar(&ignoreTrailing, "ignore-trailing", false, "ignore bytes after the top-level value instead of erroring")
	flags.BoolVar(&cacheDataStrings, "cache-data-strings", false, "intern value strings, not just object keys")
	flags.BoolVar(&verbose, "verbose", false, "emit parser warnings (e.g. numeric overflow degradation)")
	flags.BoolVar(&preview, "preview", false, "print a best-effort decoded text dump to stderr before parsing")

	return cmd
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func parseEncodingFlag(s string) (transcode.Encoding, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return transcode.UnknownEncoding, nil
	case "utf8", "utf-8":
		return transcode.UTF8, nil
	case "utf16le", "utf-16le":
		return transcode.UTF16LE, nil
	case "utf16be", "utf-16be":
		return transcode.UTF16BE, nil
	case "utf32le", "utf-32le":
		return transcode.UTF32LE, nil
	case "utf32be", "utf-32be":
		return transcode.UTF32BE, nil
	default:
		return 0, fmt.Errorf("unknown --encoding %q", s)
	}
}

func parseNumberPolicyFlag(s string) (json.NumberPolicy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return json.Auto, nil
	case "auto-decimal", "autodecimal":
		return json.AutoDecimal, nil
	case "string":
		return json.StringPolicy, nil
	default:
		return 0, fmt.Errorf("unknown --number-policy %q", s)
	}
}

// valueToAny projects a *json.Value into plain Go data (map/slice/
// scalar) suitable for yaml.Marshal, via the tagged union's visitor
// dispatch rather than a second type switch over Value's internals.
func valueToAny(v *json.Value) (any, error) {
	return v.Apply(json.Visitor{
		VisitNull:  func() (any, error) { return nil, nil },
		VisitBool:  func(b bool) (any, error) { return b, nil },
		VisitInt:   func(i int64) (any, error) { return i, nil },
		VisitFloat: func(f float64) (any, error) { return f, nil },
		VisitString: func(s string) (any, error) { return s, nil },
		VisitArray: func(arr []*json.Value) (any, error) {
			out := make([]any, len(arr))
			for i, e := range arr {
				converted, err := valueToAny(e)
				if err != nil {
					return nil, err
				}
				out[i] = converted
			}
			return out, nil
		},
		VisitObject: func(o *json.ObjectValue) (any, error) {
			out := make(map[string]any, o.Len())
			var outerErr error
			o.Range(func(k string, val *json.Value) bool {
				converted, err := valueToAny(val)
				if err != nil {
					outerErr = err
					return false
				}
				out[k] = converted
				return true
			})
			return out, outerErr
		},
	})
}
