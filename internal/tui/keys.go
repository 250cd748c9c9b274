package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/mnemo/internal/session"
)

type keyMap struct {
	Start       key.Binding
	Next        key.Binding
	Pause       key.Binding
	Resume      key.Binding
	ShowAnswer  key.Binding
	Stop        key.Binding
	Learning    key.Binding
	FromDown    key.Binding
	FromUp      key.Binding
	ToDown      key.Binding
	ToUp        key.Binding
	ReplayAll   key.Binding
	ReplaySlow  key.Binding
	ReplayShown key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:       key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start")),
		Next:        key.NewBinding(key.WithKeys(" ", "enter", "n"), key.WithHelp("space", "next")),
		Pause:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:      key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "resume")),
		ShowAnswer:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "show answer")),
		Stop:        key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc", "stop")),
		Learning:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "learning mode")),
		FromDown:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "from")),
		FromUp:      key.NewBinding(key.WithKeys("right")),
		ToDown:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/↑", "to")),
		ToUp:        key.NewBinding(key.WithKeys("up", "k")),
		ReplayAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "replay all")),
		ReplaySlow:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "replay slow")),
		ReplayShown: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replay revealed")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// sync enables exactly the bindings that are valid for the snapshot.
func (k *keyMap) sync(snap session.Snapshot) {
	c := snap.Controls
	stopped := snap.Mode == session.Stopped
	k.Start.SetEnabled(c.Start)
	k.Next.SetEnabled(c.Next)
	k.Pause.SetEnabled(c.Pause)
	k.Resume.SetEnabled(c.Resume)
	k.ShowAnswer.SetEnabled(c.ShowAnswer)
	k.Stop.SetEnabled(c.Stop)
	k.Learning.SetEnabled(stopped)
	rangeOn := stopped && !snap.RangeHidden
	k.FromDown.SetEnabled(rangeOn)
	k.FromUp.SetEnabled(rangeOn)
	k.ToDown.SetEnabled(rangeOn)
	k.ToUp.SetEnabled(rangeOn)
	k.ReplayAll.SetEnabled(snap.Replays.All)
	k.ReplaySlow.SetEnabled(snap.Replays.Slow)
	k.ReplayShown.SetEnabled(snap.Replays.Shown)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Next, k.Pause, k.Resume, k.ShowAnswer, k.Stop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Next, k.Pause, k.Resume, k.ShowAnswer, k.Stop},
		{k.Learning, k.FromDown, k.ToDown},
		{k.ReplayAll, k.ReplaySlow, k.ReplayShown},
		{k.Help, k.Quit},
	}
}
