// Package gui provides a minimal Fyne desktop window onto a running
// plugin session. Unlike the debugger package's interactive TUI, the
// inspector here never writes to the session: it polls vm.State on a
// timer and renders the register file, flag word, and the three
// memory regions. Driving the session (StartCall, Step, breakpoints)
// is the caller's responsibility, typically cmd/pluginrun running the
// engine in its own goroutine while this window is open.
package gui

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/pluginhost/thumbvm/vm"
)

// regionDumpBytes bounds how much of a region is rendered per refresh.
// Regions (especially Data) can be much larger than fits usefully in a
// text grid; only the leading window is shown.
const regionDumpBytes = 256

// Inspector is a read-only view onto a vm.State.
type Inspector struct {
	State *vm.State

	app    fyne.App
	window fyne.Window

	registerView *widget.TextGrid
	programView  *widget.TextGrid
	dataView     *widget.TextGrid
	serviceView  *widget.TextGrid

	// RefreshInterval controls how often the views repaint from State.
	// Defaults to 200ms if left zero.
	RefreshInterval time.Duration

	stop chan struct{}
}

// New creates an inspector window over state. Call Run to show it.
func New(state *vm.State) *Inspector {
	a := app.New()
	w := a.NewWindow("Plugin Session Inspector")

	insp := &Inspector{
		State:           state,
		app:             a,
		window:          w,
		RefreshInterval: 200 * time.Millisecond,
		stop:            make(chan struct{}),
	}
	insp.build()
	w.Resize(fyne.NewSize(1000, 700))
	return insp
}

func (g *Inspector) build() {
	g.registerView = widget.NewTextGrid()
	g.programView = widget.NewTextGrid()
	g.dataView = widget.NewTextGrid()
	g.serviceView = widget.NewTextGrid()
	g.updateAll()

	registerPanel := container.NewBorder(
		widget.NewLabel("Registers"), nil, nil, nil,
		container.NewScroll(g.registerView),
	)
	programPanel := container.NewBorder(
		widget.NewLabel("Program"), nil, nil, nil,
		container.NewScroll(g.programView),
	)
	dataPanel := container.NewBorder(
		widget.NewLabel("Data"), nil, nil, nil,
		container.NewScroll(g.dataView),
	)
	servicePanel := container.NewBorder(
		widget.NewLabel("Service"), nil, nil, nil,
		container.NewScroll(g.serviceView),
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Program", programPanel),
		container.NewTabItem("Data", dataPanel),
		container.NewTabItem("Service", servicePanel),
	)

	split := container.NewHSplit(registerPanel, tabs)
	split.SetOffset(0.3)

	g.window.SetContent(split)
}

// Run shows the window and polls State until it is closed. Blocks
// until the window closes.
func (g *Inspector) Run() {
	interval := g.RefreshInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				g.updateAll()
			case <-g.stop:
				ticker.Stop()
				return
			}
		}
	}()
	g.window.SetOnClosed(func() {
		close(g.stop)
	})
	g.window.ShowAndRun()
}

func (g *Inspector) updateAll() {
	g.registerView.SetText(formatRegisters(g.State))
	g.programView.SetText(formatRegion(g.State, g.State.Program))
	g.dataView.SetText(formatRegion(g.State, g.State.Data))
	g.serviceView.SetText(formatRegion(g.State, g.State.Service))
}

// formatRegisters renders the register file, SP/LR/PC, the flag word,
// and the last error (if any) as the register panel will show it.
func formatRegisters(s *vm.State) string {
	var sb strings.Builder

	sb.WriteString("General registers:\n")
	for i := 0; i < 13; i++ {
		sb.WriteString(fmt.Sprintf("R%-2d: 0x%08X\n", i, s.Register(i)))
	}

	sb.WriteString("\nSpecial registers:\n")
	sb.WriteString(fmt.Sprintf("SP:  0x%08X\n", s.SP()))
	sb.WriteString(fmt.Sprintf("LR:  0x%08X\n", s.LR()))
	sb.WriteString(fmt.Sprintf("PC:  0x%08X\n", s.PC()))

	sb.WriteString("\nFlags (APSR):\n")
	flags := s.Flags
	letters := []struct {
		mask uint32
		name string
	}{
		{vm.FlagN, "N"}, {vm.FlagZ, "Z"}, {vm.FlagC, "C"}, {vm.FlagV, "V"},
	}
	set := ""
	for _, l := range letters {
		if flags&l.mask != 0 {
			set += l.name
		} else {
			set += "-"
		}
	}
	sb.WriteString(fmt.Sprintf("%s  (0x%08X)\n", set, flags))

	if err := s.LastError; err != nil {
		sb.WriteString(fmt.Sprintf("\nLast error: %v\n", err))
	}

	return sb.String()
}

// formatRegion renders a hex/ASCII dump of the leading bytes of
// region, reading through s so program-region reads go through the
// host callback like everything else.
func formatRegion(s *vm.State, region vm.MemoryRegion) string {
	if region.Length == 0 {
		return "(unconfigured)"
	}

	var sb strings.Builder

	shown := region.Length
	if shown > regionDumpBytes {
		shown = regionDumpBytes
	}

	sb.WriteString(fmt.Sprintf("Base 0x%08X, length %d (showing %d):\n\n", region.Base, region.Length, shown))

	for row := uint32(0); row < shown; row += 16 {
		lineAddr := region.Base + row
		sb.WriteString(fmt.Sprintf("%08X: ", lineAddr))

		var hex, ascii strings.Builder
		for col := uint32(0); col < 16 && row+col < shown; col++ {
			b, err := s.ReadByte(lineAddr + col)
			if err != nil {
				hex.WriteString("?? ")
				ascii.WriteString("?")
				continue
			}
			hex.WriteString(fmt.Sprintf("%02X ", b))
			if b >= 32 && b < 127 {
				ascii.WriteByte(b)
			} else {
				ascii.WriteString(".")
			}
		}
		sb.WriteString(hex.String())
		sb.WriteString(" ")
		sb.WriteString(ascii.String())
		sb.WriteString("\n")
	}

	return sb.String()
}
