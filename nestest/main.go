// nestest runs the nestest ROM on a flat mock bus and prints the canonical
// trace log, one line per instruction, for diffing against the golden log.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pocke42/famicore/cartridge"
	"github.com/pocke42/famicore/cpu"
)

// mockBus is a flat 64 KiB address space with no peripherals; nestest only
// needs RAM and its own PRG ROM.
type mockBus struct {
	ram [65536]byte
}

func (b *mockBus) Read(addr uint16) byte        { return b.ram[addr] }
func (b *mockBus) ReadSilent(addr uint16) byte  { return b.ram[addr] }
func (b *mockBus) Write(addr uint16, data byte) { b.ram[addr] = data }
func (b *mockBus) TakeNMI() bool                { return false }
func (b *mockBus) TakeDMA() bool                { return false }

func main() {
	romPath := flag.String("rom", "nestest/testdata/nestest.nes", "Path to the nestest ROM")
	limit := flag.Int("limit", 8992, "Maximum number of instructions to execute")
	flag.Parse()

	data, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	desc, err := cartridge.ParseHeader(data)
	if err != nil {
		log.Fatalf("parse rom: %v", err)
	}

	b := &mockBus{}
	// nestest's code lives in the first 16 KiB of PRG; mirror it into both
	// halves so the vectors resolve either way.
	prg := data[desc.PRGROMStart : desc.PRGROMStart+desc.PRGROMSize]
	copy(b.ram[0x8000:], prg[:0x4000])
	copy(b.ram[0xC000:], prg[:0x4000])

	c := cpu.New()
	c.ConnectBus(b)
	c.Reset()

	// The automated nestest entry point, with the documented start state.
	c.PC = 0xC000
	c.SP = 0xFD
	c.P = 0x24

	for i := 0; i < *limit; i++ {
		state := c.State()
		raw, text := c.Disassemble(state.PC)

		var rawStr string
		for _, v := range raw {
			rawStr += fmt.Sprintf("%02X ", v)
		}
		fmt.Printf("%04X  %-9s %-32s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
			state.PC, rawStr, text,
			state.A, state.X, state.Y, state.P, state.SP, state.Cycles)

		// Run the instruction to completion: the fetch clock plus its debt.
		c.Clock()
		for !c.Ready() {
			c.Clock()
		}

		// The official ROM ends its automated run by looping at 0xC66E.
		if c.PC == state.PC {
			break
		}
	}
}
