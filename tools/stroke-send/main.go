// Command stroke-send is a manual testing tool for the stroke feed
// socket.
//
// It reads newline-delimited stroke events from stdin or a file and
// writes them to a running stenotaped's socket, so the full pipeline can
// be exercised without a steno engine:
//
//	go run tools/stroke-gen.go -stream | go run ./tools/stroke-send
//	go run ./tools/stroke-send -input events.ndjson -delay 250
//
// A -delay pause between lines lets recorded files replay slowly enough
// for the timing bars to show.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"stenotape/internal/config"
)

var (
	socketPath = flag.String("socket", config.DefaultSocketPath(), "stenotaped socket path")
	inputPath  = flag.String("input", "-", "Event file to send; - means stdin")
	delayMs    = flag.Int("delay", 0, "Pause between events in milliseconds")
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stroke-send: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	conn, err := net.Dial("unix", *socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stroke-send: connect: %v\n", err)
		fmt.Fprintln(os.Stderr, "Is stenotaped running?")
		os.Exit(1)
	}
	defer conn.Close()

	sent := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if sent > 0 && *delayMs > 0 {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
		if _, err := conn.Write(append(line, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "stroke-send: write: %v\n", err)
			os.Exit(1)
		}
		sent++
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stroke-send: read: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Sent %d events to %s\n", sent, *socketPath)
}
