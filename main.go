package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pocke42/famicore/console"
	"github.com/pocke42/famicore/display"
	"github.com/pocke42/famicore/server"
)

func main() {
	romPath := flag.String("rom", "", "Path to a .nes ROM to load at startup")
	grpcPort := flag.Int("port", 50051, "Port for the gRPC control server")
	recordPath := flag.String("record", "", "Record controller input to a replayable script file")
	flag.Parse()

	var recordFile *os.File
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			log.Fatalf("create record file: %v", err)
		}
		defer f.Close()
		recordFile = f
	}

	c := console.New()

	srv := server.NewGRPCServer()
	srv.SetEmu(c)
	if err := srv.Start(*grpcPort); err != nil {
		log.Fatalf("start gRPC server: %v", err)
	}
	defer srv.Stop()

	d := display.New(c, srv, recordFile)
	if *romPath != "" {
		if err := d.LoadROM(*romPath); err != nil {
			log.Fatalf("load rom: %v", err)
		}
	}

	ebiten.SetWindowSize(display.ScaledWidth(), display.ScaledHeight())
	ebiten.SetWindowTitle("famicore")
	if err := ebiten.RunGame(d); err != nil {
		log.Fatal(err)
	}
}
