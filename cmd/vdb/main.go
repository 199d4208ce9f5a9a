// vdb is a gdb-flavoured remote debugger speaking the console's gRPC
// control surface.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pocke42/famicore/api"
	"github.com/pocke42/famicore/cpu"
)

func main() {
	target := flag.String("target", "localhost:50051", "Address of the emulator's gRPC server")
	flag.Parse()

	fmt.Println("vdb - famicore debugger")
	fmt.Printf("Connecting to emulator on %s...\n", *target)

	conn, err := grpc.NewClient(*target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	defer conn.Close()

	client := api.NewControllerServiceClient(conn)
	fmt.Println("Connected. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(vdb) ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch {
		case cmd == "help" || cmd == "h":
			fmt.Println("Commands:")
			fmt.Println("  run, c       - Resume execution")
			fmt.Println("  pause, p     - Pause execution")
			fmt.Println("  step, s      - Step one instruction")
			fmt.Println("  regs, i r    - Print CPU registers")
			fmt.Println("  x <addr>     - Examine memory (x 0200, x/16 0200)")
			fmt.Println("  dis [addr]   - Disassemble 16 instructions (default: PC)")
			fmt.Println("  reset        - Hardware reset")
			fmt.Println("  quit, q      - Exit debugger")

		case cmd == "quit" || cmd == "q" || cmd == "exit":
			return

		case cmd == "pause" || cmd == "p":
			if _, err := client.Pause(context.Background(), &api.Empty{}); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Emulator paused.")
			printRegs(client)

		case cmd == "run" || cmd == "c" || cmd == "continue":
			if _, err := client.Resume(context.Background(), &api.Empty{}); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Emulator running...")

		case cmd == "step" || cmd == "s":
			if _, err := client.Step(context.Background(), &api.Empty{}); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printRegs(client)

		case cmd == "reset":
			if _, err := client.ResetSystem(context.Background(), &api.Empty{}); err != nil {
				fmt.Printf("Error: %v\n", err)
			}

		case cmd == "regs" || cmd == "i":
			printRegs(client)

		case cmd == "x" || strings.HasPrefix(cmd, "x/"):
			count := 1
			if c, ok := strings.CutPrefix(cmd, "x/"); ok {
				if n, err := strconv.Atoi(c); err == nil && n > 0 {
					count = n
				}
			}
			if len(parts) < 2 {
				fmt.Println("Usage: x <addr> or x/<count> <addr>")
				continue
			}
			addr, err := parseAddr(parts[1])
			if err != nil {
				fmt.Printf("Invalid address: %s\n", parts[1])
				continue
			}
			res, err := client.ReadMemoryBlock(context.Background(), &api.MemoryBlockRequest{
				Address: uint32(addr),
				Size:    uint32(count),
			})
			if err != nil {
				fmt.Printf("Error reading memory: %v\n", err)
				continue
			}
			printHexDump(addr, res.Data)

		case cmd == "dis":
			addr, haveAddr := uint16(0), false
			if len(parts) > 1 {
				a, err := parseAddr(parts[1])
				if err != nil {
					fmt.Printf("Invalid address: %s\n", parts[1])
					continue
				}
				addr, haveAddr = a, true
			}
			if !haveAddr {
				state, err := client.GetCPUState(context.Background(), &api.Empty{})
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					continue
				}
				addr = uint16(state.Pc)
			}
			disassemble(client, addr, 16)

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "$")
	addr, err := strconv.ParseUint(s, 16, 16)
	return uint16(addr), err
}

func printRegs(client api.ControllerServiceClient) {
	state, err := client.GetCPUState(context.Background(), &api.Empty{})
	if err != nil {
		fmt.Printf("Error getting CPU state: %v\n", err)
		return
	}
	fmt.Printf("A: %02X  X: %02X  Y: %02X  SP: %02X  PC: %04X  P: %08b  CYC: %d\n",
		state.A, state.X, state.Y, state.Sp, state.Pc, state.Status, state.Cycles)
}

func printHexDump(startAddr uint16, data []byte) {
	for i := 0; i < len(data); i += 16 {
		fmt.Printf("%04X:", startAddr+uint16(i))
		end := min(i+16, len(data))
		for j := i; j < end; j++ {
			fmt.Printf(" %02X", data[j])
		}
		fmt.Println()
	}
}

// disassemble fetches a memory window and decodes it with the emulator's
// own opcode table.
func disassemble(client api.ControllerServiceClient, addr uint16, lines int) {
	res, err := client.ReadMemoryBlock(context.Background(), &api.MemoryBlockRequest{
		Address: uint32(addr),
		Size:    uint32(lines * 3),
	})
	if err != nil {
		fmt.Printf("Error reading memory: %v\n", err)
		return
	}

	data := res.Data
	offset := 0
	for i := 0; i < lines && offset < len(data); i++ {
		instr := cpu.Decode(data[offset])
		if instr.Operate == nil {
			fmt.Printf("%04X  %02X        .byte $%02X\n", addr+uint16(offset), data[offset], data[offset])
			offset++
			continue
		}
		size := instr.Mode.Size()
		if offset+size > len(data) {
			break
		}
		raw := data[offset : offset+size]
		var rawStr strings.Builder
		for _, b := range raw {
			fmt.Fprintf(&rawStr, "%02X ", b)
		}
		fmt.Printf("%04X  %-9s %s %s\n", addr+uint16(offset), rawStr.String(), instr.Name, formatOperand(instr.Mode, raw, addr+uint16(offset)))
		offset += size
	}
}

func formatOperand(m cpu.AddrMode, raw []byte, at uint16) string {
	switch m {
	case cpu.IMP:
		return ""
	case cpu.ACC:
		return "A"
	case cpu.IMM:
		return fmt.Sprintf("#$%02X", raw[1])
	case cpu.ZP:
		return fmt.Sprintf("$%02X", raw[1])
	case cpu.ZPX:
		return fmt.Sprintf("$%02X,X", raw[1])
	case cpu.ZPY:
		return fmt.Sprintf("$%02X,Y", raw[1])
	case cpu.REL:
		return fmt.Sprintf("$%04X", at+2+uint16(int8(raw[1])))
	case cpu.ABS:
		return fmt.Sprintf("$%02X%02X", raw[2], raw[1])
	case cpu.ABX:
		return fmt.Sprintf("$%02X%02X,X", raw[2], raw[1])
	case cpu.ABY:
		return fmt.Sprintf("$%02X%02X,Y", raw[2], raw[1])
	case cpu.IND:
		return fmt.Sprintf("($%02X%02X)", raw[2], raw[1])
	case cpu.INX:
		return fmt.Sprintf("($%02X,X)", raw[1])
	case cpu.INY:
		return fmt.Sprintf("($%02X),Y", raw[1])
	}
	return ""
}
