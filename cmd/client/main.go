// client replays a recorded input script against a running emulator over
// the gRPC controller stream.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pocke42/famicore/api"
)

const frameDuration = time.Second / 60

func parseButtons(buttonStr string, player uint32) *api.InputState {
	state := &api.InputState{PlayerIndex: player}
	if buttonStr == "NONE" {
		return state
	}

	for _, b := range strings.Split(buttonStr, "+") {
		switch strings.ToUpper(b) {
		case "A":
			state.A = true
		case "B":
			state.B = true
		case "SELECT":
			state.Select = true
		case "START":
			state.Start = true
		case "UP":
			state.Up = true
		case "DOWN":
			state.Down = true
		case "LEFT":
			state.Left = true
		case "RIGHT":
			state.Right = true
		}
	}
	return state
}

func main() {
	scriptFile := flag.String("script", "", "Path to the recorded script file to replay")
	target := flag.String("target", "localhost:50051", "Address of the emulator's gRPC server")
	player := flag.Uint("player", 1, "Player index to drive (1 or 2)")
	flag.Parse()

	if *scriptFile == "" {
		log.Fatalf("Please provide a script file using -script <file.script>")
	}

	file, err := os.Open(*scriptFile)
	if err != nil {
		log.Fatalf("Failed to open script file: %v", err)
	}
	defer file.Close()

	log.Printf("Connecting to emulator on %s...", *target)
	conn, err := grpc.NewClient(*target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	client := api.NewControllerServiceClient(conn)
	stream, err := client.StreamInput(context.Background())
	if err != nil {
		log.Fatalf("failed to open stream: %v", err)
	}

	log.Printf("Connected! Starting replay of %s in 2 seconds...", *scriptFile)
	time.Sleep(2 * time.Second)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			log.Printf("Skipping invalid line: %s", line)
			continue
		}

		frames, err := strconv.Atoi(parts[0])
		if err != nil {
			log.Printf("Invalid frame count: %s", parts[0])
			continue
		}

		if err := stream.Send(parseButtons(parts[1], uint32(*player))); err != nil {
			log.Fatalf("failed to send state: %v", err)
		}
		time.Sleep(time.Duration(frames) * frameDuration)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read script: %v", err)
	}

	if err := stream.CloseSend(); err != nil {
		log.Printf("failed to close stream: %v", err)
	}
	log.Println("Replay complete. Disconnected.")
}
