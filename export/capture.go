package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/billbatista/acasinha-quotes/metrics"
)

const (
	CapturedNotice      = "캡쳐완료하였습니다 보낼 곳에 붙여넣기 하세요"
	CaptureFailedNotice = "캡쳐에 실패했습니다."
)

var ErrCaptureFailed = errors.New("capture failed")

type Method string

const (
	MethodShared   Method = "shared"
	MethodDownload Method = "download"
)

// Artifact is a rendered sheet file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

func (a Artifact) Reader() io.Reader { return bytes.NewReader(a.Data) }

// Result tells the caller how the artifact was delivered. For downloads
// the caller sends Artifact to the user; for shares URL points at it.
type Result struct {
	Method   Method
	Artifact Artifact
	URL      string
}

type Capturer struct {
	renderer Renderer
	sharer   Sharer
	label    string
	logger   *slog.Logger
}

type CapturerOption func(*Capturer)

func WithSharer(s Sharer) CapturerOption {
	return func(c *Capturer) {
		c.sharer = s
	}
}

func WithLabel(label string) CapturerOption {
	return func(c *Capturer) {
		c.label = label
	}
}

func WithLogger(logger *slog.Logger) CapturerOption {
	return func(c *Capturer) {
		c.logger = logger
	}
}

func NewCapturer(r Renderer, opts ...CapturerOption) *Capturer {
	c := &Capturer{
		renderer: r,
		label:    DefaultLabel,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileName is the fixed artifact name, e.g. 견적서.png.
func (c *Capturer) FileName() string {
	return c.label + c.renderer.Ext()
}

// Capture renders the view with its chrome hidden and delivers the result.
// The view's chrome is visible again when Capture returns, whether or not
// rendering succeeded. A failed share falls back to a download.
func (c *Capturer) Capture(ctx context.Context, v *View) (Result, error) {
	data, err := c.rasterize(ctx, v)
	if err != nil {
		metrics.ExportFailures.Inc()
		c.logger.ErrorContext(ctx, "oops, something went wrong while capturing", "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	a := Artifact{
		Name:        c.FileName(),
		ContentType: c.renderer.ContentType(),
		Data:        data,
	}

	if c.sharer != nil && c.sharer.CanShare(a) {
		url, err := c.sharer.Share(ctx, a, ShareTitle, ShareText)
		if err == nil {
			c.logger.InfoContext(ctx, "share was successful", "url", url)
			metrics.Exports.WithLabelValues(string(MethodShared)).Inc()
			return Result{Method: MethodShared, Artifact: a, URL: url}, nil
		}
		c.logger.WarnContext(ctx, "sharing failed, falling back to download", "error", err)
	}

	metrics.Exports.WithLabelValues(string(MethodDownload)).Inc()
	return Result{Method: MethodDownload, Artifact: a}, nil
}

func (c *Capturer) rasterize(ctx context.Context, v *View) (data []byte, err error) {
	restore := v.hideChrome()
	defer restore()

	start := time.Now()
	defer func() {
		metrics.ExportDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("renderer panic: %v", r)
		}
	}()

	return c.renderer.Render(ctx, v)
}
