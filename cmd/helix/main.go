package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/helix/bridge"
	"github.com/lixenwraith/helix/command"
	"github.com/lixenwraith/helix/config"
	"github.com/lixenwraith/helix/engine"
	"github.com/lixenwraith/helix/render"
)

const (
	logDir      = "logs"
	logFileName = "helix.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// setupLogging configures log output based on debug flag
// If debug is true, logs go to file; otherwise, logging is disabled
// Returns the log file handle (or nil) that should be closed when done
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logs directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)

	// Rotate oversized log files by renaming with a timestamp
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		timestamp := time.Now().Format("2006-01-02-15-04-05")
		rotatedName := filepath.Join(logDir, fmt.Sprintf("helix-%s.log", timestamp))
		if err := os.Rename(logPath, rotatedName); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate log file: %v\n", err)
		}
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Printf("=== Helix started ===")

	return logFile
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging to file")
	configPath := flag.String("config", "", "Path to TOML configuration file")
	interactive := flag.Bool("interactive", false, "Capture terminal input as frame events")
	duration := flag.Duration("duration", 3*time.Second, "How long to run the demo loop")
	flag.Parse()

	logFile := setupLogging(*debug)
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	eng.Start()

	var screen tcell.Screen
	if *interactive {
		if screen, err = tcell.NewScreen(); err == nil {
			if err = screen.Init(); err != nil {
				screen = nil
			} else {
				screen.EnableMouse()
				defer screen.Fini()
			}
		}
		if screen == nil {
			fmt.Fprintln(os.Stderr, "Warning: no terminal available, running headless")
		}
	}

	// Script worker: exercises the plane while the main loop runs
	scriptDone := make(chan struct{})
	go runScriptWorker(bridge.New(eng), scriptDone)

	// Main loop: 60 Hz frame tick, drain input, update the plane
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	deadline := time.After(*duration)

	events := make(chan tcell.Event, 64)
	if screen != nil {
		go func() {
			for {
				ev := screen.PollEvent()
				if ev == nil {
					return
				}
				events <- ev
			}
		}()
	}

running:
	for {
		select {
		case <-deadline:
			break running
		case ev := <-events:
			if key, ok := ev.(*tcell.EventKey); ok && key.Key() == tcell.KeyEscape {
				break running
			}
			eng.HandleEvent(ev)
		case <-ticker.C:
			eng.TickInput()
			eng.Update()
		}
	}

	<-scriptDone
	eng.Update() // final frame flushes remaining callbacks
	eng.Stop()

	stats := eng.Executor.Statistics()
	fmt.Printf("executed=%d errors=%d unhandled=%d rateLimited=%d entities=%d frames=%d\n",
		stats.TotalExecuted, stats.TotalErrors, stats.TotalUnhandled,
		stats.TotalRateLimited, eng.Scene.EntityCount(), eng.Frame())
}

// runScriptWorker plays the role of the scripting side: it creates
// entities, moves them, queries stats, and drains callbacks and frame
// events the way an embedded script runtime would.
func runScriptWorker(b *bridge.Bridge, done chan<- struct{}) {
	defer close(done)

	b.RegisterHandler("demo.echo", func(payload any) command.Result {
		raw, err := command.PayloadAs[string](payload)
		if err != nil {
			return command.Failure(err.Error())
		}
		return command.Success(map[string]any{"resultJson": raw})
	})

	entityID := make(chan uint64, 1)
	if _, err := b.CreateEntity(render.MeshParams{
		Shape: render.ShapeCube,
		Scale: 1,
		Color: 0xff8040ff,
	}, func(r bridge.Record) {
		if r.ErrorMessage == "" {
			entityID <- r.ResultID
		}
	}); err != nil {
		log.Printf("demo: createEntity: %v", err)
	}

	if _, err := b.Submit("demo.echo", `{"hello":"helix"}`, "demo-agent", func(r bridge.Record) {
		log.Printf("demo: echo replied: %s", r.ResultJSON)
	}); err != nil {
		log.Printf("demo: submit: %v", err)
	}

	// Drain loop: poll callbacks and frame events for a short while,
	// nudging the entity once its id arrives
	var id uint64
	for i := 0; i < 100; i++ {
		if _, err := b.DrainCallbacks(); err != nil {
			log.Printf("demo: drain callbacks: %v", err)
		}
		if out, err := b.DrainFrameEvents(); err == nil && out != "[]" {
			log.Printf("demo: frame events: %s", out)
		}

		select {
		case id = <-entityID:
			log.Printf("demo: entity %d created", id)
		default:
		}
		if id != 0 {
			if err := b.MoveEntityBy(id, render.Vec3{X: 0.1}); err != nil {
				log.Printf("demo: moveBy: %v", err)
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
}
