package ppu

// bufferDot is one pre-rendered pixel of a background or sprite layer.
type bufferDot struct {
	colorIdx byte // index into the system palette
	opaque   bool
	behind   bool // sprite attribute bit 5
	sprite0  bool
}

// tile is an 8x8 pattern unpacked from its two bitplanes.
type tile [64]byte

func (t *tile) decode(src []byte) {
	if len(src) < tileDataSize {
		*t = tile{}
		return
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			lo := src[row] >> (7 - col) & 1
			hi := src[8+row] >> (7 - col) & 1
			t[row*8+col] = hi<<1 | lo
		}
	}
}

// Clock advances the PPU by one dot. Layer preparation happens on the frame
// wrap; VBlank, NMI and sprite-zero reporting happen on their fixed dot
// coordinates during the walk.
func (p *PPU) Clock() {
	newDot := (p.dotIdx + 1) % TicksPerFrame

	if newDot == 0 {
		p.renderBackgroundLayers()
		p.renderSpriteLayer()
		p.spriteZeroReported = false

		p.oddFrame = !p.oddFrame
		if p.oddFrame && p.renderingEnabled() {
			// Odd frames drop the first dot; its pixel is still composed so
			// the frame keeps column 0 of row 0.
			newDot++
			p.composeDot(0, 0)
		}
	}

	if newDot == ScreenRowCount*ScanlineColCount {
		// Row 240, dot 0: the visible frame is complete.
		if p.frameBuffers[1] != nil {
			p.activeFB ^= 1
		}
	}

	if newDot == 241*ScanlineColCount+1 {
		p.status |= statusVBlank
		if p.control.generateNMI {
			p.bus.TriggerNMI()
		}
	}

	if newDot == 261*ScanlineColCount+1 {
		p.status &^= statusVBlank | statusSpriteZeroHit | statusSpriteOverflow
	}

	p.dotIdx = newDot

	col := int(p.dotIdx % ScanlineColCount)
	row := int(p.dotIdx / ScanlineColCount)
	if col < ScreenColCount && row < ScreenRowCount {
		p.composeDot(row, col)
	}
}

// composeDot resolves the visible pixel at (row, col): scrolled background
// first, then the sprite layer with its priority and sprite-zero rules.
func (p *PPU) composeDot(row, col int) {
	dstIdx := row*ScreenColCount + col

	sCol := col + int(p.scroll[0])
	sRow := (row + int(p.scroll[1])) % ScreenRowCount
	primary := p.physicalNametable(p.control.nameTableID)

	var bg bufferDot
	if sCol >= ScreenColCount {
		bg = p.backgroundBuffers[1-primary][sRow*ScreenColCount+sCol%ScreenColCount]
	} else {
		bg = p.backgroundBuffers[primary][sRow*ScreenColCount+sCol]
	}

	fb := p.frameBuffers[p.activeFB]
	p.putPixel(fb, dstIdx, bg.colorIdx)

	sp := p.spriteBuffer[dstIdx]
	if !sp.opaque {
		return
	}
	if !sp.behind || !bg.opaque {
		p.putPixel(fb, dstIdx, sp.colorIdx)
	}
	if bg.opaque && sp.sprite0 && !p.spriteZeroReported {
		p.status |= statusSpriteZeroHit
		p.spriteZeroReported = true
	}
}

func (p *PPU) putPixel(fb []byte, idx int, colorIdx byte) {
	if fb == nil {
		return
	}
	c := systemPalette[colorIdx&0x3F]
	fb[idx*4+0] = c.R
	fb[idx*4+1] = c.G
	fb[idx*4+2] = c.B
	fb[idx*4+3] = 0xFF
}

// renderBackgroundLayers unpacks both physical nametables into full-screen
// pixel buffers. Pixel color 0 resolves to the universal backdrop and is
// marked transparent for sprite priority.
func (p *PPU) renderBackgroundLayers() {
	if !p.mask.showBackground && !p.mask.showBackgroundLeft {
		return
	}

	var t tile
	for bufIdx := 0; bufIdx < 2; bufIdx++ {
		buf := &p.backgroundBuffers[bufIdx]
		*buf = [ScreenRowCount * ScreenColCount]bufferDot{}

		nameTableBase := uint16(bufIdx) * nametableSize
		attrTableBase := nameTableBase + attributeTableOffset

		for row := 0; row < 30; row++ {
			for col := 0; col < 32; col++ {
				patternIdx := p.vram[nameTableBase+uint16(row*32+col)]
				patternAddr := uint16(p.control.backgroundTableIdx)*0x1000 +
					uint16(patternIdx)*tileDataSize
				t.decode(p.bus.ReadCHRSpan(patternAddr, tileDataSize))

				paletteIdx := p.attributePalette(attrTableBase, row, col)
				for i, px := range t {
					colorIdx := p.palette[0]
					if px != 0 {
						colorIdx = p.palette[paletteIdx*4+px]
					}
					buf[(row*8+i/8)*ScreenColCount+col*8+i%8] = bufferDot{
						colorIdx: colorIdx,
						opaque:   px != 0,
					}
				}
			}
		}
	}
}

// attributePalette selects the 2-bit palette id for a tile from the 64-byte
// attribute table. One attribute byte covers a 4x4 tile block split into
// four 2x2 quadrants.
func (p *PPU) attributePalette(attrTableBase uint16, row, col int) byte {
	attr := p.vram[attrTableBase+uint16((row/4)*8+col/4)]

	var quadrant byte
	if row%4 >= 2 {
		quadrant |= 2
	}
	if col%4 >= 2 {
		quadrant |= 1
	}

	switch quadrant {
	case 0b00: // top-left
		return attr & 0x03
	case 0b01: // top-right
		return (attr >> 2) & 0x03
	case 0b10: // bottom-left
		return (attr >> 4) & 0x03
	default: // bottom-right
		return (attr >> 6) & 0x03
	}
}

// renderSpriteLayer rasterizes all 64 OAM entries into a screen-sized
// buffer. Iterating from entry 63 down to 0 lets sprite 0 win overlaps.
func (p *PPU) renderSpriteLayer() {
	if !p.mask.showSprites && !p.mask.showSpritesLeft {
		return
	}

	p.spriteBuffer = [ScreenRowCount * ScreenColCount]bufferDot{}

	var t tile
	for i := 63; i >= 0; i-- {
		entry := p.oam[i*4 : i*4+4]
		y, id, attr, x := entry[0], entry[1], entry[2], entry[3]
		if y >= 0xEF || x >= 240 {
			continue
		}

		patternAddr := p.control.spriteTableAddr + uint16(id)*tileDataSize
		t.decode(p.bus.ReadCHRSpan(patternAddr, tileDataSize))
		paletteIdx := 4 + attr&0x03

		for pxIdx, px := range t {
			if px == 0 {
				continue
			}
			dx := pxIdx % 8
			dy := pxIdx / 8
			if attr&0x40 != 0 { // horizontal flip
				dx = 7 - dx
			}
			if attr&0x80 != 0 { // vertical flip
				dy = 7 - dy
			}

			// Sprites render one scanline below their OAM Y coordinate.
			idxY := int(y) + 1 + dy
			idxX := int(x) + dx
			if idxY >= ScreenRowCount || idxX >= ScreenColCount {
				continue
			}

			p.spriteBuffer[idxY*ScreenColCount+idxX] = bufferDot{
				colorIdx: p.palette[uint16(paletteIdx)*4+uint16(px)],
				opaque:   true,
				behind:   attr&0x20 != 0,
				sprite0:  i == 0,
			}
		}
	}
}
