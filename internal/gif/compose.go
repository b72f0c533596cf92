package gif

// composer owns the persistent canvas and produces one ComposedFrame per
// image block, applying disposal methods, transparency, and interlaced row
// ordering.
type composer struct {
	width, height int

	canvas     []byte // RGBA8888, len == 4*width*height
	snapshot   []byte
	background [4]byte // the color used to initialize the canvas
	hasBGColor bool

	frames []ComposedFrame
}

// interlacePassStarts and interlacePassSteps implement the four-pass
// interlace row schedule: pass 1 rows 0,8,16,...; pass 2 rows 4,12,20,...;
// pass 3 rows 2,6,10,...; pass 4 rows 1,3,5,....
var (
	interlacePassStarts = [4]int{0, 4, 2, 1}
	interlacePassSteps  = [4]int{8, 8, 4, 2}
)

// interlacedRowOrder returns, for an image of the given height, the output
// row that logical row i (0-indexed in transmission order) maps to.
func interlacedRowOrder(height int) []int {
	order := make([]int, 0, height)
	for pass := 0; pass < 4; pass++ {
		for row := interlacePassStarts[pass]; row < height; row += interlacePassSteps[pass] {
			order = append(order, row)
		}
	}
	return order
}

func newComposer(screen LogicalScreen) *composer {
	c := &composer{
		width:  screen.Width,
		height: screen.Height,
	}
	c.canvas = make([]byte, 4*c.width*c.height)

	if screen.GlobalTable != nil && int(screen.BackgroundIndex) < len(screen.GlobalTable) {
		bg := screen.GlobalTable[screen.BackgroundIndex]
		c.background = [4]byte{bg.R, bg.G, bg.B, 255}
		c.hasBGColor = true
		c.fillCanvas(c.background)
	}
	// Otherwise the canvas starts fully transparent, which is Go's
	// zero-valued byte slice already.

	return c
}

func (c *composer) fillCanvas(color [4]byte) {
	for i := 0; i < len(c.canvas); i += 4 {
		copy(c.canvas[i:i+4], color[:])
	}
}

func (c *composer) fillRect(left, top, w, h int, color [4]byte) {
	for y := top; y < top+h; y++ {
		rowOff := 4 * (y*c.width + left)
		for x := 0; x < w; x++ {
			copy(c.canvas[rowOff+4*x:rowOff+4*x+4], color[:])
		}
	}
}

// composeImage paints desc's decoded indices onto the canvas, snapshots
// before painting (for a possible later RestorePrevious), emits the
// resulting frame, and applies gce's disposal in preparation for the next
// image.
func (c *composer) composeImage(desc ImageDescriptor, indices []byte, table ColorTable, gce *GraphicControl) ComposedFrame {
	c.snapshot = append(c.snapshot[:0], c.canvas...)

	c.paint(desc, indices, table, gce)

	pixels := make([]byte, len(c.canvas))
	copy(pixels, c.canvas)

	frame := ComposedFrame{Pixels: pixels}
	if gce != nil {
		frame.DelayCS = gce.DelayCS
		frame.Disposal = gce.Disposal
	}

	c.applyDisposal(desc, gce)
	return frame
}

func (c *composer) paint(desc ImageDescriptor, indices []byte, table ColorTable, gce *GraphicControl) {
	hasTransparent := gce != nil && gce.HasTransparent
	var transparentIndex byte
	if hasTransparent {
		transparentIndex = gce.TransparentIndex
	}

	rowOrder := []int(nil)
	if desc.Interlaced {
		rowOrder = interlacedRowOrder(desc.Height)
	}

	for row := 0; row < desc.Height; row++ {
		outRow := row
		if rowOrder != nil {
			outRow = rowOrder[row]
		}

		canvasRow := desc.Top + outRow
		srcOff := row * desc.Width
		for x := 0; x < desc.Width; x++ {
			idx := indices[srcOff+x]
			if hasTransparent && idx == transparentIndex {
				continue
			}
			rgb := table[idx]
			off := 4 * (canvasRow*c.width + desc.Left + x)
			c.canvas[off] = rgb.R
			c.canvas[off+1] = rgb.G
			c.canvas[off+2] = rgb.B
			c.canvas[off+3] = 255
		}
	}
}

func (c *composer) applyDisposal(desc ImageDescriptor, gce *GraphicControl) {
	if gce == nil {
		return
	}

	switch gce.Disposal {
	case DisposalNone, DisposalKeepInPlace:
		// no change

	case DisposalRestoreBackground:
		clear := [4]byte{}
		if !gce.HasTransparent && c.hasBGColor {
			clear = c.background
		}
		c.fillRect(desc.Left, desc.Top, desc.Width, desc.Height, clear)

	case DisposalRestorePrevious:
		copy(c.canvas, c.snapshot)
	}
}
