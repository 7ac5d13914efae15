// Command preview shows the frame the matrix would display for a payload,
// without LED hardware. The payload comes from a file or a live fetch.
//
// Usage:
//
//	go run ./cmd/preview -file testdata/payload.txt
//	go run ./cmd/preview -user octocat -max 64
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/contrib-matrix/internal/adapter/console"
	"github.com/couchcryptid/contrib-matrix/internal/adapter/contrib"
	"github.com/couchcryptid/contrib-matrix/internal/domain"
	"github.com/couchcryptid/contrib-matrix/internal/observability"
	"github.com/couchcryptid/contrib-matrix/internal/pipeline"
)

type options struct {
	file         string
	user         string
	baseURL      string
	suffix       string
	width        int
	height       int
	max          int
	leadingTotal bool
	timeout      time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.file, "file", "", "read the payload from this file instead of fetching")
	flag.StringVar(&o.user, "user", "", "GitHub username to fetch")
	flag.StringVar(&o.baseURL, "base-url", "https://github-contributions-api.deno.dev/", "contributions endpoint base URL")
	flag.StringVar(&o.suffix, "suffix", ".text?no-total=true", "response type suffix")
	flag.IntVar(&o.width, "width", 15, "matrix width")
	flag.IntVar(&o.height, "height", 7, "matrix height")
	flag.IntVar(&o.max, "max", 255, "maximum brightness")
	flag.BoolVar(&o.leadingTotal, "leading-total", false, "payload starts with a total-count line")
	flag.DurationVar(&o.timeout, "timeout", 15*time.Second, "fetch timeout")
	flag.Parse()

	if (o.file == "") == (o.user == "") {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "preview:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	payload, err := load(ctx, o)
	if err != nil {
		return err
	}

	frame, err := pipeline.NewTransformer(o.width, o.height, o.max, o.leadingTotal).Transform(payload)
	if err != nil {
		return err
	}

	sink := console.NewSink(out, o.width, o.height, o.max)
	domain.Render(frame.Levels, frame.Width, frame.Height, sink)
	if err := sink.Show(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "peak=%d lit=%d/%d\n", frame.Peak, frame.Lit(), len(frame.Levels))
	return err
}

func load(ctx context.Context, o options) (domain.Payload, error) {
	if o.file != "" {
		body, err := os.ReadFile(o.file)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("read payload: %w", err)
		}
		return domain.Payload{Body: body, FetchedAt: time.Now()}, nil
	}
	if o.user == "" {
		return domain.Payload{}, errors.New("no payload source")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := contrib.NewClient(o.baseURL+o.user+o.suffix, o.timeout, observability.NewMetrics(), logger)
	return client.Fetch(ctx)
}
