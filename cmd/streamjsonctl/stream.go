package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	json "github.com/mcvoid/streamjson"
	"github.com/mcvoid/streamjson/internal/rendezvous"
)

// newStreamCmd exercises the rendezvous transport directly: a producer
// goroutine chunks the input file into the queue, and a consumer reads
// it back out through a StreamBuffer feeding the parser, rather than
// handing the parser an io.Reader straight over the file.
func newStreamCmd() *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Parse a document through the rendezvous producer/consumer split",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeFn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeFn()

			val, err := parseViaRendezvous(cmd.Context(), src, chunkSize)
			if err != nil {
				return fmt.Errorf("stream: %w", err)
			}
			return json.Write(cmd.OutOrStdout(), val, json.CompactStyle())
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 4096, "bytes per rendezvous handoff")
	return cmd
}

func parseViaRendezvous(ctx context.Context, src io.Reader, chunkSize int) (*json.Value, error) {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	q := rendezvous.New[rendezvous.Buffer]()
	sb := rendezvous.NewStreamBuffer(q, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf := make([]byte, chunkSize)
		for {
			n, err := src.Read(buf)
			if n > 0 {
				chunk := append(rendezvous.Buffer(nil), buf[:n]...)
				if res := q.Put(ctx, chunk); res != rendezvous.OK {
					return fmt.Errorf("producer: %s", res)
				}
			}
			if err == io.EOF {
				if res := q.Put(ctx, nil); res != rendezvous.OK {
					return fmt.Errorf("producer: %s", res)
				}
				return nil
			}
			if err != nil {
				return err
			}
		}
	})

	var result *json.Value
	g.Go(func() error {
		v, err := json.Parse(streamBufferReader{sb})
		if err != nil {
			return err
		}
		result = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// streamBufferReader adapts a *rendezvous.StreamBuffer (ReadByte-only) to
// io.Reader, since the parser reads through transcode.Reader's io.Reader
// source rather than a ByteReader directly.
type streamBufferReader struct{ sb *rendezvous.StreamBuffer }

func (r streamBufferReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.sb.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}
