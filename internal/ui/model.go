// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Output
	backend    string
	sinkID     string
	sampleRate int
	channels   int

	// Source
	title string

	// Playback
	state  string
	volume int
	muted  bool

	// Buffer
	buffered  int
	minBuffer int
	maxBuffer int

	// Stats
	overruns  int64
	underruns int64
	dropped   int64

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64

	volumeCtrl *VolumeControl

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreamInfo()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders backend status
func (m Model) renderHeader() string {
	status := "No output"
	if m.backend != "" {
		status = fmt.Sprintf("%s backend (%s)", m.backend, m.state)
	}

	return fmt.Sprintf(`┌─ XAudio Player ──────────────────────────────────────┐
│ Output: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(status, 45))
}

// renderStreamInfo renders the current source
func (m Model) renderStreamInfo() string {
	if m.sampleRate == 0 {
		return "│ No stream                                            │\n"
	}

	s := "│ Now Playing:                                         │\n"
	if m.title != "" {
		s += fmt.Sprintf("│   %-50s │\n", truncate(m.title, 50))
	}
	s += fmt.Sprintf("│ Format: %dHz %-36s │\n", m.sampleRate, channelName(m.channels))

	return s
}

// renderControls renders volume and buffer status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)
	bufferBar := renderBar(m.buffered, m.maxBuffer, 20)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Buffer: [%s] %d/%d samples%-5s │\n",
		volumeBar, m.volume, muteIcon, "",
		bufferBar, m.buffered, m.maxBuffer, "")
}

// renderStats renders playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Stats:  Overruns: %d  Underruns: %d  Dropped: %d%-4s │
│                                                      │
`, m.overruns, m.underruns, m.dropped, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  d:Debug  q:Quit                  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Sink: %-44s │
│   Goroutines: %-38d │
│   Heap: %-44s │
│   Low-water mark: %-34d │
`, truncate(m.sinkID, 44), m.goroutines, fmt.Sprintf("%.1f MB", float64(m.memAlloc)/(1<<20)), m.minBuffer)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.volumeCtrl.requestQuit()
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.volumeCtrl.requestVolume(m.volume, m.muted)
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.volumeCtrl.requestVolume(m.volume, m.muted)
		}
	case "m":
		m.muted = !m.muted
		m.volumeCtrl.requestVolume(m.volume, m.muted)
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Backend != "" {
		m.backend = msg.Backend
		m.sinkID = msg.SinkID
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.MaxBuffer != 0 {
		m.buffered = msg.Buffered
		m.minBuffer = msg.MinBuffer
		m.maxBuffer = msg.MaxBuffer
	}
	if msg.Overruns != 0 || msg.Underruns != 0 || msg.Dropped != 0 {
		m.overruns = msg.Overruns
		m.underruns = msg.Underruns
		m.dropped = msg.Dropped
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Backend    string
	SinkID     string
	State      string
	SampleRate int
	Channels   int
	Title      string
	Volume     *int
	Buffered   int
	MinBuffer  int
	MaxBuffer  int
	Overruns   int64
	Underruns  int64
	Dropped    int64
	Goroutines int
	MemAlloc   uint64
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
