// @lixen: #focus{pipeline[stream,driver]}
// Package stream drives the frame pipeline over a byte stream.
//
// Chunks are read synchronously; every blob completed by a chunk is decoded,
// mapped, quantized and written before the next read. A failed frame is
// dropped and reported to the log and the Observer, never to the output.
package stream

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"log"
	"time"

	"github.com/lixenwraith/asciiterm/frame"
	"github.com/lixenwraith/asciiterm/glyph"
	"github.com/lixenwraith/asciiterm/render"
)

const (
	// DefaultChunkSize is the read size used when none is configured
	DefaultChunkSize = 4096

	// DefaultMaxPixels bounds the width*height a frame header may declare.
	// Codecs allocate the full image from the header before reading pixel data.
	DefaultMaxPixels = 89478485
)

var (
	// ErrEmptyFrame is a blob carrying no payload after its marker
	ErrEmptyFrame = errors.New("empty frame")
	// ErrEmptyImage is a decoded image with zero width or height
	ErrEmptyImage = errors.New("empty image")
	// ErrDecode wraps codec failures
	ErrDecode = errors.New("decode failed")
	// ErrTooLarge is a frame whose header declares more than the pixel limit
	ErrTooLarge = errors.New("frame too large")
	// ErrOutput wraps output write failures; these stop the driver
	ErrOutput = errors.New("output failed")
)

// Drop reasons reported to the Observer
const (
	ReasonEmpty       = "empty"
	ReasonUnsupported = "unsupported"
	ReasonDecode      = "decode"
	ReasonOversize    = "oversize"
	ReasonRender      = "render"
	ReasonTail        = "tail"
)

// DecodeFunc turns an encoded blob into an image
type DecodeFunc func(blob []byte) (image.Image, error)

// Decode uses the registered image codecs with the DefaultMaxPixels limit.
// Blobs of unregistered formats fail with image.ErrFormat.
func Decode(blob []byte) (image.Image, error) {
	return decodeLimited(blob, DefaultMaxPixels)
}

// LimitedDecoder returns a DecodeFunc rejecting frames above maxPixels before any pixel buffer is allocated
func LimitedDecoder(maxPixels int) DecodeFunc {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return func(blob []byte) (image.Image, error) {
		return decodeLimited(blob, maxPixels)
	}
}

func decodeLimited(blob []byte, maxPixels int) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(blob))
	return img, err
}

// Observer receives pipeline events; implemented by metrics.Metrics
type Observer interface {
	ChunkRead(n, pending int)
	FrameRendered(size int, elapsed time.Duration)
	FrameDropped(reason string, size int)
}

type nopObserver struct{}

func (nopObserver) ChunkRead(int, int)               {}
func (nopObserver) FrameRendered(int, time.Duration) {}
func (nopObserver) FrameDropped(string, int)         {}

// Stats counts driver activity
type Stats struct {
	Chunks   uint64 // non-empty reads
	Bytes    uint64 // bytes read
	Frames   uint64 // blobs completed by the splitter (plus a flushed tail)
	Rendered uint64 // frames written to output
	Dropped  uint64 // frames discarded
}

// Options configures a Driver. Splitter, Mapper, Renderer and Output are required.
type Options struct {
	Splitter  *frame.Splitter
	Mapper    *glyph.Mapper
	Renderer  *render.Renderer
	Output    io.Writer
	ChunkSize int
	// FlushTail decodes the buffered tail at end of input instead of dropping it
	FlushTail bool
	// MaxPixels limits the default decoder; ignored when Decode is set
	MaxPixels int
	Observer  Observer
	Decode    DecodeFunc
}

// Driver runs the read → split → decode → map → quantize → render loop
type Driver struct {
	splitter  *frame.Splitter
	mapper    *glyph.Mapper
	renderer  *render.Renderer
	out       io.Writer
	chunkSize int
	flushTail bool
	observer  Observer
	decode    DecodeFunc

	marker []byte
	state  State
	stats  Stats
}

// New creates a driver from opts, filling defaults for optional fields
func New(opts Options) *Driver {
	d := &Driver{
		splitter:  opts.Splitter,
		mapper:    opts.Mapper,
		renderer:  opts.Renderer,
		out:       opts.Output,
		chunkSize: opts.ChunkSize,
		flushTail: opts.FlushTail,
		observer:  opts.Observer,
		decode:    opts.Decode,
		state:     StateWaitingForData,
	}
	if d.splitter == nil {
		d.splitter = frame.NewSplitter(nil)
	}
	if d.chunkSize <= 0 {
		d.chunkSize = DefaultChunkSize
	}
	if d.observer == nil {
		d.observer = nopObserver{}
	}
	if d.decode == nil {
		d.decode = LimitedDecoder(opts.MaxPixels)
	}
	d.marker = d.splitter.Marker()
	return d
}

// State returns the current driver state
func (d *Driver) State() State {
	return d.state
}

// Stats returns a snapshot of the counters
func (d *Driver) Stats() Stats {
	return d.stats
}

// Run reads r until end of input. Returns nil on io.EOF.
// Read failures and output write failures are returned; frame failures are not.
func (d *Driver) Run(r io.Reader) error {
	buf := make([]byte, d.chunkSize)

	for {
		d.state = StateWaitingForData
		n, err := r.Read(buf)

		if n > 0 {
			d.stats.Chunks++
			d.stats.Bytes += uint64(n)

			blobs := d.splitter.Feed(buf[:n])
			d.state = StateHavePartialBuffer
			d.observer.ChunkRead(n, d.splitter.Pending())

			for _, blob := range blobs {
				d.state = StateFrameReady
				if ferr := d.handle(blob); ferr != nil {
					d.state = StateTerminated
					return ferr
				}
			}
		}

		if errors.Is(err, io.EOF) {
			return d.finish()
		}
		if err != nil {
			d.state = StateTerminated
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// finish handles the buffered tail at end of input and enters the terminal state
func (d *Driver) finish() error {
	defer func() { d.state = StateTerminated }()

	if d.flushTail {
		if tail := d.splitter.Flush(); tail != nil {
			d.state = StateFrameReady
			if err := d.handle(tail); err != nil {
				return err
			}
		}
	} else if pending := d.splitter.Pending(); pending > 0 {
		log.Printf("stream ended with %d unterminated bytes, dropping partial frame", pending)
		d.observer.FrameDropped(ReasonTail, pending)
		d.splitter.Reset()
	}

	log.Printf("stream done: chunks=%d bytes=%d frames=%d rendered=%d dropped=%d",
		d.stats.Chunks, d.stats.Bytes, d.stats.Frames, d.stats.Rendered, d.stats.Dropped)
	return nil
}

// handle processes one blob, absorbing frame-level failures. Only output failures are returned.
func (d *Driver) handle(blob []byte) error {
	d.stats.Frames++
	start := time.Now()

	err := d.safeProcessFrame(blob)
	if err == nil {
		d.stats.Rendered++
		d.observer.FrameRendered(len(blob), time.Since(start))
		return nil
	}
	if errors.Is(err, ErrOutput) {
		return err
	}

	d.stats.Dropped++
	reason := dropReason(err)
	d.observer.FrameDropped(reason, len(blob))
	log.Printf("frame %d dropped (%s, %d bytes): %v", d.stats.Frames, reason, len(blob), err)
	return nil
}

// safeProcessFrame turns a codec panic on a malformed blob into a decode failure
func (d *Driver) safeProcessFrame(blob []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: codec panic: %v", ErrDecode, r)
		}
	}()
	return d.processFrame(blob)
}

// processFrame runs one blob through the pipeline
func (d *Driver) processFrame(blob []byte) error {
	if len(blob) == 0 || bytes.Equal(blob, d.marker) {
		return ErrEmptyFrame
	}

	img, err := d.decode(blob)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}

	resized := glyph.Resample(img, d.mapper.Width, d.mapper.Height, d.mapper.Method)
	glyphs := d.mapper.MapGray(glyph.Luminance(resized))
	colors := render.Colors(resized)

	rows, err := d.renderer.Rows(colors, glyphs)
	if err != nil {
		return err
	}
	if err := d.renderer.WriteFrame(d.out, rows); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFrame), errors.Is(err, ErrEmptyImage):
		return ReasonEmpty
	case errors.Is(err, image.ErrFormat):
		return ReasonUnsupported
	case errors.Is(err, ErrTooLarge):
		return ReasonOversize
	case errors.Is(err, ErrDecode):
		return ReasonDecode
	default:
		return ReasonRender
	}
}
