package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/pocke42/famicore/api"
	"github.com/pocke42/famicore/cpu"
)

// Emu defines the methods the server needs from the console. Everything
// here must be side-effect free or flag-based: the emulation itself runs on
// the host loop, not on gRPC goroutines.
type Emu interface {
	Read(addr uint16) byte
	ReadBlock(addr, size uint16) []byte
	FramePixels() []byte
	CPUState() cpu.State
	Reset()
	SetPaused(bool)
	RequestStep()
}

// GRPCServer exposes the console's remote-control surface and tracks the
// network controller state the display merges with local input.
type GRPCServer struct {
	api.UnimplementedControllerServiceServer

	mu      sync.Mutex
	p1State [8]bool
	p2State [8]bool
	emu     Emu

	listener net.Listener
	server   *grpc.Server
}

// NewGRPCServer initializes the gRPC controller server.
func NewGRPCServer() *GRPCServer {
	return &GRPCServer{}
}

// SetEmu assigns the console the server operates on.
func (s *GRPCServer) SetEmu(emu Emu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emu = emu
}

func (s *GRPCServer) getEmu() (Emu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emu == nil {
		return nil, fmt.Errorf("emulator not connected")
	}
	return s.emu, nil
}

// GetFrame returns the last completed frame's raw RGBA pixels.
func (s *GRPCServer) GetFrame(ctx context.Context, in *api.Empty) (*api.FrameResponse, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	return &api.FrameResponse{Pixels: emu.FramePixels()}, nil
}

// ReadMemory returns the byte at one bus address.
func (s *GRPCServer) ReadMemory(ctx context.Context, in *api.MemoryRequest) (*api.MemoryResponse, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	return &api.MemoryResponse{Data: uint32(emu.Read(uint16(in.Address)))}, nil
}

// ReadMemoryBlock returns a run of bus bytes.
func (s *GRPCServer) ReadMemoryBlock(ctx context.Context, in *api.MemoryBlockRequest) (*api.MemoryBlockResponse, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	return &api.MemoryBlockResponse{Data: emu.ReadBlock(uint16(in.Address), uint16(in.Size))}, nil
}

// GetCPUState returns the CPU register snapshot.
func (s *GRPCServer) GetCPUState(ctx context.Context, in *api.Empty) (*api.CPUStateResponse, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	state := emu.CPUState()
	return &api.CPUStateResponse{
		A:      uint32(state.A),
		X:      uint32(state.X),
		Y:      uint32(state.Y),
		Sp:     uint32(state.SP),
		Status: uint32(state.P),
		Pc:     uint32(state.PC),
		Cycles: state.Cycles,
	}, nil
}

// Pause suspends the emulation loop.
func (s *GRPCServer) Pause(ctx context.Context, in *api.Empty) (*api.Empty, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	emu.SetPaused(true)
	return &api.Empty{}, nil
}

// Resume restarts the emulation loop.
func (s *GRPCServer) Resume(ctx context.Context, in *api.Empty) (*api.Empty, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	emu.SetPaused(false)
	return &api.Empty{}, nil
}

// Step queues a single-instruction step for the host loop.
func (s *GRPCServer) Step(ctx context.Context, in *api.Empty) (*api.Empty, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	emu.RequestStep()
	return &api.Empty{}, nil
}

// ResetSystem triggers a hardware reset, returning to the title screen.
func (s *GRPCServer) ResetSystem(ctx context.Context, in *api.Empty) (*api.Empty, error) {
	emu, err := s.getEmu()
	if err != nil {
		return nil, err
	}
	emu.Reset()
	return &api.Empty{}, nil
}

// StreamInput handles incoming controller streams from clients.
func (s *GRPCServer) StreamInput(stream grpc.BidiStreamingServer[api.InputState, api.Empty]) error {
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		state := [8]bool{
			req.A,
			req.B,
			req.Select,
			req.Start,
			req.Up,
			req.Down,
			req.Left,
			req.Right,
		}

		s.mu.Lock()
		switch req.PlayerIndex {
		case 0, 1: // default to P1 when unspecified
			s.p1State = state
		case 2:
			s.p2State = state
		}
		s.mu.Unlock()
	}
}

// GetP1State returns the current network state for Player 1.
func (s *GRPCServer) GetP1State() [8]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p1State
}

// GetP2State returns the current network state for Player 2.
func (s *GRPCServer) GetP2State() [8]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p2State
}

// Start begins listening for gRPC connections on the given port.
func (s *GRPCServer) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = lis
	s.server = grpc.NewServer()
	api.RegisterControllerServiceServer(s.server, s)

	log.Printf("gRPC server listening on :%d", port)

	go func() {
		if err := s.server.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the gRPC server.
func (s *GRPCServer) Stop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}
