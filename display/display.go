package display

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sqweek/dialog"

	"github.com/pocke42/famicore/cartridge"
	"github.com/pocke42/famicore/console"
	"github.com/pocke42/famicore/ppu"
	"github.com/pocke42/famicore/server"
)

const (
	screenWidth  = ppu.ScreenColCount
	screenHeight = ppu.ScreenRowCount
	scaleFactor  = 3
)

var buttonNames = [8]string{"A", "B", "SELECT", "START", "UP", "DOWN", "LEFT", "RIGHT"}

// Display is the ebiten host: it runs the console a frame at a time, maps
// the keyboard onto controller 1 and merges in whatever the gRPC clients
// are holding down.
type Display struct {
	console    *console.Console
	grpcServer *server.GRPCServer

	framebuffers [2][]byte
	frameImage   *ebiten.Image

	// TV static shown while no cartridge is inserted.
	staticImage *ebiten.Image
	staticPix   []byte

	// Input recording.
	recordFile      *os.File
	lastButtons     [8]bool
	buttonHoldCount int
	firstFrame      bool

	romLoadChan chan string

	currentButtons [8]bool

	// CHR pattern-table overlay.
	showPatternTables bool
	patternImages     [2]*ebiten.Image
	patternPix        []byte
}

// New creates a new Display instance and registers the two framebuffers
// with the console.
func New(c *console.Console, srv *server.GRPCServer, recFile *os.File) *Display {
	d := &Display{
		console:     c,
		grpcServer:  srv,
		frameImage:  ebiten.NewImage(screenWidth, screenHeight),
		staticImage: ebiten.NewImage(screenWidth, screenHeight),
		staticPix:   make([]byte, ppu.FrameBufferSize),
		recordFile:  recFile,
		firstFrame:  true,
		romLoadChan: make(chan string, 1),
	}
	d.framebuffers[0] = make([]byte, ppu.FrameBufferSize)
	d.framebuffers[1] = make([]byte, ppu.FrameBufferSize)
	c.SetFramebuffers(d.framebuffers[0], d.framebuffers[1])
	d.patternImages[0] = ebiten.NewImage(128, 128)
	d.patternImages[1] = ebiten.NewImage(128, 128)
	d.patternPix = make([]byte, 128*128*4)
	return d
}

// LoadROM reads a .nes file and inserts it into the console.
func (d *Display) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cart, err := cartridge.New(data)
	if err != nil {
		return err
	}
	d.console.InsertCartridge(cart)
	log.Printf("loaded %s (%s)", path, cart.MapperName())
	return nil
}

func (d *Display) writeRecord(frames int, b [8]bool) {
	var names []string
	for i, pressed := range b {
		if pressed {
			names = append(names, buttonNames[i])
		}
	}
	btnStr := "NONE"
	if len(names) > 0 {
		btnStr = strings.Join(names, "+")
	}
	fmt.Fprintf(d.recordFile, "%d %s\n", frames, btnStr)
}

// Update advances the console by one video frame.
// Update is called every tick (1/60 [s] by default).
func (d *Display) Update() error {
	// Check if a ROM was selected via the async dialog.
	select {
	case filename := <-d.romLoadChan:
		if err := d.LoadROM(filename); err != nil {
			log.Printf("load rom: %v", err)
		}
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		go func() {
			filename, err := dialog.File().Filter("NES ROM", "nes").Load()
			if err != nil {
				log.Println(err)
				return
			}
			d.romLoadChan <- filename
		}()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		d.console.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		d.console.SetPaused(!d.console.Paused())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		d.showPatternTables = !d.showPatternTables
	}

	// Poll controller input, merging local keys and remote network input.
	remote := d.grpcServer.GetP1State()
	buttons := [8]bool{
		ebiten.IsKeyPressed(ebiten.KeyZ) || remote[0],          // A
		ebiten.IsKeyPressed(ebiten.KeyX) || remote[1],          // B
		ebiten.IsKeyPressed(ebiten.KeyShift) || remote[2],      // Select
		ebiten.IsKeyPressed(ebiten.KeyEnter) || remote[3],      // Start
		ebiten.IsKeyPressed(ebiten.KeyArrowUp) || remote[4],    // Up
		ebiten.IsKeyPressed(ebiten.KeyArrowDown) || remote[5],  // Down
		ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || remote[6],  // Left
		ebiten.IsKeyPressed(ebiten.KeyArrowRight) || remote[7], // Right
	}
	d.console.SetControllerState(0, buttons)
	d.console.SetControllerState(1, d.grpcServer.GetP2State())
	d.currentButtons = buttons

	// Generate TV static if no cartridge is loaded.
	if !d.console.HasCartridge() {
		for i := 0; i < len(d.staticPix); i += 4 {
			val := byte(rand.Intn(256))
			d.staticPix[i] = val
			d.staticPix[i+1] = val
			d.staticPix[i+2] = val
			d.staticPix[i+3] = 255
		}
		d.staticImage.WritePixels(d.staticPix)
		return nil
	}

	// Record inputs if recording is enabled.
	if d.recordFile != nil {
		if d.firstFrame {
			d.lastButtons = buttons
			d.buttonHoldCount = 1
			d.firstFrame = false
		} else if buttons == d.lastButtons {
			d.buttonHoldCount++
		} else {
			d.writeRecord(d.buttonHoldCount, d.lastButtons)
			d.lastButtons = buttons
			d.buttonHoldCount = 1
		}
	}

	if d.console.Paused() {
		for d.console.TakeStepRequest() {
			d.console.StepInstruction()
		}
		return nil
	}

	d.console.TickFrame()
	return nil
}

// Draw draws the game screen.
// Draw is called every frame (typically 1/60[s] for 60Hz display).
func (d *Display) Draw(screen *ebiten.Image) {
	var raw *ebiten.Image
	if d.console.HasCartridge() {
		d.frameImage.WritePixels(d.console.FramePixels())
		raw = d.frameImage
	} else {
		raw = d.staticImage
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scaleFactor, scaleFactor)
	screen.DrawImage(raw, op)

	if d.showPatternTables && d.console.HasCartridge() {
		d.drawPatternTables(screen)
	}

	if d.console.Paused() {
		state := d.console.CPUState()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"PAUSED  PC:%04X A:%02X X:%02X Y:%02X SP:%02X P:%02X CYC:%d",
			state.PC, state.A, state.X, state.Y, state.SP, state.P, state.Cycles))
	} else if !d.console.HasCartridge() {
		ebitenutil.DebugPrint(screen, "O: load ROM   R: reset   SPACE: pause   C: CHR view   ESC: quit")
	}
}

// drawPatternTables overlays both CHR pattern tables in the bottom corner.
func (d *Display) drawPatternTables(screen *ebiten.Image) {
	for i := 0; i < 2; i++ {
		d.console.PPU.PatternTable(i, 0, d.patternPix)
		d.patternImages[i].WritePixels(d.patternPix)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(i*132), float64(ScaledHeight()-132))
		screen.DrawImage(d.patternImages[i], op)
	}
}

// Layout takes the outside size (e.g., the window size) and returns the
// (logical) screen size.
func (d *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth * scaleFactor, screenHeight * scaleFactor
}

func ScaledWidth() int  { return screenWidth * scaleFactor }
func ScaledHeight() int { return screenHeight * scaleFactor }
