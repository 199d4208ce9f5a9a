package ppu

// DebugRead reads PPU memory without any of the register side effects, for
// debug views and the remote debugger.
func (p *PPU) DebugRead(addr uint16) byte {
	addr &= 0x3FFF
	switch {
	case addr <= 0x1FFF:
		return p.bus.ReadCHR(addr)
	case addr >= paletteTableStart:
		return p.palette[paletteIndex(addr)]
	default:
		return p.vram[p.mirrorAddress(addr)]
	}
}

// PatternTable unpacks pattern table i (0 or 1) into a 128x128 RGBA image
// using the given palette (0-7). dest must hold 128*128*4 bytes.
func (p *PPU) PatternTable(i int, palette byte, dest []byte) {
	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := uint16(tileY*256 + tileX*16)
			for row := uint16(0); row < 8; row++ {
				lsb := p.DebugRead(uint16(i)*0x1000 + offset + row)
				msb := p.DebugRead(uint16(i)*0x1000 + offset + row + 8)

				for col := 0; col < 8; col++ {
					px := (lsb & 0x01) | (msb&0x01)<<1
					lsb >>= 1
					msb >>= 1

					// Bit 0 is the rightmost pixel.
					x := tileX*8 + (7 - col)
					y := tileY*8 + int(row)

					c := systemPalette[p.palette[0]&0x3F]
					if px != 0 {
						colorIdx := p.DebugRead(0x3F00 + uint16(palette)*4 + uint16(px))
						c = systemPalette[colorIdx&0x3F]
					}

					idx := (y*128 + x) * 4
					dest[idx] = c.R
					dest[idx+1] = c.G
					dest[idx+2] = c.B
					dest[idx+3] = 0xFF
				}
			}
		}
	}
}
