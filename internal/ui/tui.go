// ABOUTME: Channels between the status TUI and the player loop
// ABOUTME: Builds the bubbletea program and the status sender the player reports through
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume change from the UI to the player
type VolumeChangeMsg struct {
	Volume int // 0-100
	Muted  bool
}

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// VolumeControl carries key presses out of the UI. Sends never block the
// render loop; a full channel drops the request.
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

func (c *VolumeControl) requestVolume(volume int, muted bool) {
	if c == nil {
		return
	}
	select {
	case c.Changes <- VolumeChangeMsg{Volume: volume, Muted: muted}:
	default:
	}
}

func (c *VolumeControl) requestQuit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- QuitMsg{}:
	default:
	}
}

// NewModel returns an idle model at full volume
func NewModel(volCtrl *VolumeControl) Model {
	return Model{
		volume:     100,
		state:      "idle",
		volumeCtrl: volCtrl,
	}
}

// NewProgram builds the full-screen status program; the caller runs it
func NewProgram(volCtrl *VolumeControl) *tea.Program {
	return tea.NewProgram(NewModel(volCtrl), tea.WithAltScreen())
}

// StatusSender returns a function that forwards player status to prog.
// A nil program discards updates, so headless runs can share the code path.
func StatusSender(prog *tea.Program) func(StatusMsg) {
	return func(msg StatusMsg) {
		if prog != nil {
			prog.Send(msg)
		}
	}
}
