package gif

import (
	"encoding/binary"
	"io"

	"github.com/corvidlabs/giflet/internal/lzw"
	"github.com/corvidlabs/giflet/internal/subblock"
)

// Block introducers, per the GIF spec.
const (
	introImage     = 0x2C
	introExtension = 0x21
	introTrailer   = 0x3B
)

// Extension labels.
const (
	extPlainText      = 0x01
	extGraphicControl = 0xF9
	extComment        = 0xFE
	extApplication    = 0xFF
)

// Packed-byte masks, shared by the Logical Screen Descriptor and the Image
// Descriptor.
const (
	fColorTable = 1 << 7
	fInterlace  = 1 << 6
	fTableBits  = 7
)

// parser walks the top-level GIF block structure and drives a composer with
// each decoded image.
type parser struct {
	r      *byteCountingReader
	opts   Options
	screen LogicalScreen

	pendingGCE    *GraphicControl
	foundLoopInfo bool
	loopCount     int

	comp *composer
}

func newParser(data []byte, opts Options) *parser {
	return &parser{
		r:         newByteCountingReader(data),
		opts:      opts,
		loopCount: -1,
	}
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, &DecodeError{Kind: KindUnexpectedEOF, Msg: "reading byte"}
		}
		return 0, wrapErr(KindUnexpectedEOF, "reading byte", err)
	}
	return b, nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return wrapErr(KindUnexpectedEOF, "reading fixed-size field", err)
	}
	return nil
}

func readUint16LE(b []byte) int {
	return int(binary.LittleEndian.Uint16(b))
}

// run parses the entire stream, returning the composed frames and animation
// metadata once the trailer is reached.
func (p *parser) run() ([]ComposedFrame, error) {
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	if err := p.readLogicalScreenDescriptor(); err != nil {
		return nil, err
	}

	p.comp = newComposer(p.screen)

	for {
		b, err := readByte(p.r)
		if err != nil {
			return nil, err
		}

		switch b {
		case introImage:
			if err := p.readImage(); err != nil {
				return nil, err
			}
		case introExtension:
			if err := p.readExtension(); err != nil {
				return nil, err
			}
		case introTrailer:
			return p.comp.frames, nil
		default:
			return nil, newErr(KindUnknownBlock, formatUnknownBlock(b))
		}
	}
}

func formatUnknownBlock(b byte) string {
	const hex = "0123456789ABCDEF"
	return "introducer byte 0x" + string([]byte{hex[b>>4], hex[b&0xF]})
}

func (p *parser) readHeader() error {
	var sig [6]byte
	if err := readFull(p.r, sig[:]); err != nil {
		return err
	}
	s := string(sig[:])
	if s != "GIF87a" && s != "GIF89a" {
		return newErr(KindBadSignature, "signature is not GIF87a or GIF89a: "+s)
	}
	return nil
}

func (p *parser) readLogicalScreenDescriptor() error {
	var buf [7]byte
	if err := readFull(p.r, buf[:]); err != nil {
		return err
	}

	p.screen.Width = readUint16LE(buf[0:2])
	p.screen.Height = readUint16LE(buf[2:4])
	packed := buf[4]
	p.screen.BackgroundIndex = buf[5]
	p.screen.AspectRatio = buf[6]

	if packed&fColorTable != 0 {
		n := 1 << ((packed & fTableBits) + 1)
		table, err := p.readColorTable(n)
		if err != nil {
			return err
		}
		p.screen.GlobalTable = table
	}
	return nil
}

func (p *parser) readColorTable(entries int) (ColorTable, error) {
	buf := make([]byte, 3*entries)
	if err := readFull(p.r, buf); err != nil {
		return nil, err
	}
	table := make(ColorTable, entries)
	for i := range table {
		table[i] = RGB{R: buf[3*i], G: buf[3*i+1], B: buf[3*i+2]}
	}
	return table, nil
}

func (p *parser) readImage() error {
	var buf [9]byte
	if err := readFull(p.r, buf[:]); err != nil {
		return err
	}

	desc := ImageDescriptor{
		Left:   readUint16LE(buf[0:2]),
		Top:    readUint16LE(buf[2:4]),
		Width:  readUint16LE(buf[4:6]),
		Height: readUint16LE(buf[6:8]),
	}
	packed := buf[8]
	desc.Interlaced = packed&fInterlace != 0

	if desc.Left+desc.Width > p.screen.Width || desc.Top+desc.Height > p.screen.Height {
		return newErr(KindImageOutOfBounds, "image rectangle exceeds logical screen bounds")
	}

	activeTable := p.screen.GlobalTable
	if packed&fColorTable != 0 {
		n := 1 << ((packed & fTableBits) + 1)
		table, err := p.readColorTable(n)
		if err != nil {
			return err
		}
		desc.LocalTable = table
		activeTable = table
	} else if activeTable == nil {
		return newErr(KindNoColorTable, "image has no local color table and no global color table is present")
	}

	minCodeSize, err := readByte(p.r)
	if err != nil {
		return err
	}
	desc.MinCodeSize = minCodeSize

	sub := subblock.New(p.r)
	dec, err := lzw.NewDecoder(sub, minCodeSize)
	if err != nil {
		if err := sub.SkipToEnd(); err != nil {
			return wrapErr(KindUnexpectedEOF, "draining image data after invalid code size", err)
		}
		return wrapErr(KindInvalidLzwCodeSize, "invalid minimum LZW code size", err)
	}

	indices := make([]byte, desc.Width*desc.Height)
	excess, decErr := dec.Decode(indices)

	// The sub-block chain may still have trailing bytes (padding after the
	// end code, or an end code we never saw because the image was already
	// fully painted); drain them regardless of decErr so the parser's
	// position in the top-level stream stays correct.
	if skipErr := sub.SkipToEnd(); skipErr != nil && decErr == nil && !excess {
		return wrapErr(KindUnexpectedEOF, "draining trailing image sub-blocks", skipErr)
	}

	if decErr != nil {
		return classifyLzwError(decErr)
	}
	if excess {
		return newErr(KindExcessImageData, "LZW stream produced more indices than width*height")
	}

	if err := validateIndices(indices, activeTable); err != nil {
		return err
	}

	gce := p.pendingGCE
	p.pendingGCE = nil

	frame := p.comp.composeImage(desc, indices, activeTable, gce)
	p.comp.frames = append(p.comp.frames, frame)
	p.opts.debugf("composed frame %d: %dx%d at (%d,%d), disposal=%s, delay=%dcs",
		len(p.comp.frames)-1, desc.Width, desc.Height, desc.Left, desc.Top, frame.Disposal, frame.DelayCS)
	return nil
}

func validateIndices(indices []byte, table ColorTable) error {
	n := len(table)
	for _, idx := range indices {
		if int(idx) >= n {
			return newErr(KindPaletteIndexOutOfRange, "decoded palette index exceeds active color table length")
		}
	}
	return nil
}

func classifyLzwError(err error) error {
	switch err {
	case lzw.ErrTruncated:
		return wrapErr(KindTruncatedImage, "LZW stream ended before width*height indices were produced", err)
	case lzw.ErrNoPrevious:
		return wrapErr(KindKwKwKWithoutPrevious, "repeat code seen before any ordinary code", err)
	default:
		return wrapErr(KindInvalidCode, "malformed LZW code sequence", err)
	}
}

func (p *parser) readExtension() error {
	label, err := readByte(p.r)
	if err != nil {
		return err
	}

	switch label {
	case extGraphicControl:
		return p.readGraphicControl()
	case extComment, extPlainText:
		if err := subblock.New(p.r).SkipToEnd(); err != nil {
			return wrapErr(KindUnexpectedEOF, "draining comment or plain-text extension", err)
		}
		return nil
	case extApplication:
		return p.readApplication()
	default:
		if err := subblock.New(p.r).SkipToEnd(); err != nil {
			return wrapErr(KindUnexpectedEOF, "draining unknown extension", err)
		}
		p.opts.warnf("skipping unknown extension label 0x%02X", label)
		return nil
	}
}

// readGraphicControl reads the Graphic Control Extension's fields directly
// off p.r: unlike the application and comment extensions, its body is a
// single fixed-size block (size byte, 4 data bytes, zero terminator), not a
// sub-block chain, so it does not go through subblock.Reader.
func (p *parser) readGraphicControl() error {
	size, err := readByte(p.r)
	if err != nil {
		return wrapErr(KindUnexpectedEOF, "reading graphic control extension", err)
	}
	if size != 4 {
		return newErr(KindMalformedExtension, "graphic control extension block size must be 4")
	}

	var buf [4]byte
	if err := readFull(p.r, buf[:]); err != nil {
		return err
	}

	packed := buf[0]
	disposal := disposalFromBits((packed >> 2) & 0x7)
	if p.opts.Strict && (packed>>2)&0x7 >= 4 {
		return newErr(KindMalformedExtension, "reserved disposal value 4-7 used in strict mode")
	}

	gce := &GraphicControl{
		Disposal:       disposal,
		DelayCS:        uint16(readUint16LE(buf[1:3])),
		HasTransparent: packed&0x01 != 0,
	}
	if gce.HasTransparent {
		gce.TransparentIndex = buf[3]
	}
	p.pendingGCE = gce

	terminator, err := readByte(p.r)
	if err != nil {
		return wrapErr(KindUnexpectedEOF, "reading graphic control extension terminator", err)
	}
	if terminator != 0 {
		return newErr(KindMalformedExtension, "graphic control extension missing zero terminator")
	}
	return nil
}

// readApplication reads the fixed-size application identifier block (size
// byte, 11 data bytes) directly off p.r, then hands the following sub-block
// chain of application data to subblock.Reader.
func (p *parser) readApplication() error {
	size, err := readByte(p.r)
	if err != nil {
		return wrapErr(KindUnexpectedEOF, "reading application extension", err)
	}

	header := make([]byte, size)
	if err := readFull(p.r, header); err != nil {
		return err
	}

	sub := subblock.New(p.r)

	isNetscape := size == 11 && string(header[0:8]) == "NETSCAPE" && string(header[8:11]) == "2.0"
	if !isNetscape {
		if err := sub.SkipToEnd(); err != nil {
			return wrapErr(KindUnexpectedEOF, "draining application extension", err)
		}
		return nil
	}

	payload, err := io.ReadAll(sub)
	if err != nil {
		return wrapErr(KindUnexpectedEOF, "reading NETSCAPE2.0 sub-blocks", err)
	}
	if len(payload) >= 3 && payload[0] == 1 {
		p.loopCount = readUint16LE(payload[1:3])
		p.foundLoopInfo = true
	} else {
		p.opts.warnf("ignoring NETSCAPE2.0 extension with unexpected payload")
	}
	return nil
}
