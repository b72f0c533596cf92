package gif

import "github.com/corvidlabs/giflet/internal/logger"

// Options configures a single Decode call.
type Options struct {
	// Strict rejects GIF87a/89a streams that use the reserved disposal
	// values 4-7 in a Graphic Control Extension, instead of tolerating them
	// as DisposalNone.
	Strict bool

	// Logger receives recoverable warnings (unknown extension labels,
	// skipped blocks). If nil, warnings are discarded.
	Logger *logger.Logger
}

func (o Options) warnf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(format, args...)
	}
}

func (o Options) debugf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Debugf(format, args...)
	}
}

// Result is the outcome of successfully decoding a GIF stream.
type Result struct {
	Frames        []ComposedFrame
	Width, Height int
	// LoopCount is -1 if the stream carried no NETSCAPE2.0 application
	// extension, 0 if it requested an infinite loop, and n>0 for a finite
	// repeat count.
	LoopCount     int
	BytesConsumed int
}

// Decode parses a complete GIF87a/89a byte stream held in memory and
// composes every image block into a fully rendered RGBA frame.
func Decode(data []byte, opts Options) (*Result, error) {
	p := newParser(data, opts)

	frames, err := p.run()
	if err != nil {
		return nil, err
	}

	return &Result{
		Frames:        frames,
		Width:         p.screen.Width,
		Height:        p.screen.Height,
		LoopCount:     p.loopCount,
		BytesConsumed: p.r.BytesRead(),
	}, nil
}
