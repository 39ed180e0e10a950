// ABOUTME: Entry point for the xaudio player
// ABOUTME: Parses CLI flags and streams a file or test tone through the sink
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/xaudio-go/internal/app"
	"github.com/Resonate-Protocol/xaudio-go/internal/config"
	"github.com/Resonate-Protocol/xaudio-go/internal/source"
	"github.com/Resonate-Protocol/xaudio-go/internal/ui"
	"github.com/Resonate-Protocol/xaudio-go/internal/version"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	file       = flag.String("file", "", "Audio file to play (.mp3, .flac, .wav); empty plays a test tone")
	backend    = flag.String("backend", "", "Output backend: auto, push, callback or bridge")
	rate       = flag.Int("rate", 0, "Stream sample rate in Hz (default: source rate)")
	channels   = flag.Int("channels", 0, "Stream channels, 1 or 2 (default: source channels)")
	minBuffer  = flag.Int("min-buffer", 0, "Low-water mark in samples")
	maxBuffer  = flag.Int("max-buffer", 0, "High-water mark in samples")
	neutral    = flag.Float64("neutral", 0, "Idle output level in (-1, 1)")
	logFile    = flag.String("log-file", "", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.TUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		log.Printf("Starting %s", version.Banner())
	}

	src, err := source.Open(cfg.File)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl

	if cfg.TUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg = ui.NewProgram(volumeCtrl)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	player := app.New(cfg, src, app.WithStatus(ui.StatusSender(tuiProg)))
	if err := player.Start(); err != nil {
		if tuiProg != nil {
			tuiProg.Kill()
		}
		_ = src.Close()
		log.Fatalf("Failed to start player: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if volumeCtrl != nil {
		go handleVolumeControl(ctx, cancel, player, volumeCtrl)
	}

	if err := player.Run(ctx); err != nil {
		log.Printf("Playback error: %v", err)
	}

	if err := player.Close(); err != nil {
		log.Printf("Error closing player: %v", err)
	}
	if tuiProg != nil {
		tuiProg.Quit()
	}

	log.Printf("Player stopped")
}

// applyFlags overrides config values with explicitly set flags
func applyFlags(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "file":
			cfg.File = *file
		case "backend":
			cfg.Backend = config.Backend(*backend)
		case "rate":
			cfg.SampleRate = *rate
		case "channels":
			cfg.Channels = *channels
		case "min-buffer":
			cfg.MinBufferSize = *minBuffer
		case "max-buffer":
			cfg.MaxBufferSize = *maxBuffer
		case "neutral":
			cfg.NeutralValue = float32(*neutral)
		case "log-file":
			cfg.LogFile = *logFile
		case "no-tui":
			cfg.TUI = !*noTUI
		}
	})
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(ctx context.Context, cancel context.CancelFunc, player *app.Player, volumeCtrl *ui.VolumeControl) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			player.SetVolume(vol.Volume, vol.Muted)
		case <-volumeCtrl.Quit:
			log.Printf("Received quit signal from TUI")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
