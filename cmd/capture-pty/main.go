// Command capture-pty runs an interactive command under a sareterm PTY
// session and records its output stream to a JSON event log, for replaying
// terminal sessions outside a live PTY.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/vanpelt/sareterm/internal/config"
	"github.com/vanpelt/sareterm/internal/ptysession"
	"github.com/vanpelt/sareterm/internal/session"
)

// CaptureMetadata is the on-disk format for a recorded session.
type CaptureMetadata struct {
	CaptureDate     time.Time      `json:"captureDate"`
	TotalBytes      int            `json:"totalBytes"`
	DurationSeconds float64        `json:"durationSeconds"`
	Events          []CaptureEvent `json:"events"`
}

// CaptureEvent is one chunk of PTY output with its offset from capture start.
type CaptureEvent struct {
	TimestampMs int    `json:"timestampMs"`
	Data        []byte `json:"data"`
}

const (
	portraitCols = 65
	portraitRows = 15

	landscapeCols = 120
	landscapeRows = 30
)

func main() {
	outputFile := flag.String("output", "pty-capture.json", "Output JSON file for captured PTY data")
	landscape := flag.Bool("landscape", false, "Use landscape dimensions (120x30) instead of portrait (65x15)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{config.Runtime.Shell}
	}

	cols, rows := portraitCols, portraitRows
	orientation := "portrait"
	if *landscape {
		cols, rows = landscapeCols, landscapeRows
		orientation = "landscape"
	}

	fmt.Printf("Interactive PTY capture\n")
	fmt.Printf("Output file: %s\n", *outputFile)
	fmt.Printf("Dimensions: %dx%d (%s)\n", cols, rows, orientation)
	fmt.Println()

	store := session.NewStore(config.Runtime.SessionStoreDir)
	if err := store.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize session store: %v\n", err)
		os.Exit(1)
	}

	s, err := ptysession.Spawn(store, ptysession.SpawnOptions{
		Name:    "capture",
		Command: args,
		Env:     os.Environ(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to spawn session: %v\n", err)
		os.Exit(1)
	}

	if err := s.Resize(uint16(cols), uint16(rows)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to set terminal size: %v\n", err)
	} else {
		fmt.Printf("Set terminal size to %dx%d\n", cols, rows)
	}

	fmt.Println()
	fmt.Println("Interactive mode - use the program normally.")
	fmt.Println("Everything written to the PTY is being recorded.")
	fmt.Println("Press Ctrl+C twice within 2 seconds to stop and save.")
	fmt.Println()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set raw mode: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()
	var events []CaptureEvent
	totalBytes := 0

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	stdinDone := make(chan struct{})

	ctrlCCount := 0
	var lastCtrlC time.Time

	go func() {
		defer close(stdinDone)
		buf := make([]byte, 1024)
		for {
			select {
			case <-done:
				return
			default:
				n, err := os.Stdin.Read(buf)
				if err != nil {
					return
				}
				if n == 0 {
					continue
				}

				for i := 0; i < n; i++ {
					if buf[i] != 0x03 {
						continue
					}
					now := time.Now()
					if now.Sub(lastCtrlC) > 2*time.Second {
						ctrlCCount = 0
					}
					ctrlCCount++
					lastCtrlC = now

					if ctrlCCount >= 2 {
						fmt.Fprintf(os.Stderr, "\nCtrl+C detected twice, stopping capture...\n")
						sigChan <- os.Interrupt
						return
					}
					fmt.Fprintf(os.Stderr, "\nPress Ctrl+C again to stop recording\n")
				}

				if _, err := s.WriteInput(buf[:n]); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		for chunk := range s.ReadOutput() {
			_, _ = os.Stdout.Write(chunk)

			data := make([]byte, len(chunk))
			copy(data, chunk)
			events = append(events, CaptureEvent{
				TimestampMs: int(time.Since(startTime).Milliseconds()),
				Data:        data,
			})
			totalBytes += len(chunk)
		}
	}()

	<-sigChan
	close(done)

	_ = term.Restore(int(os.Stdin.Fd()), oldState)
	_ = s.Terminate()

	select {
	case <-stdinDone:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Println("\nRecording stopped")
	fmt.Println()

	duration := time.Since(startTime)
	metadata := CaptureMetadata{
		CaptureDate:     startTime,
		TotalBytes:      totalBytes,
		DurationSeconds: duration.Seconds(),
		Events:          events,
	}

	fmt.Printf("Saving capture to %s...\n", *outputFile)
	file, err := os.Create(*outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(metadata); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Capture saved.")
	fmt.Printf("Summary: %dx%d (%s), %d bytes, %d events, %.2fs\n",
		cols, rows, orientation, totalBytes, len(events), duration.Seconds())
}
