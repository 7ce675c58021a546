package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gbcore/gbvm/internal/vm"
)

// App is an ebiten.Game that pumps vm.VM frames and maps keyboard state to
// the eight logical Game Boy buttons, following the teacher binary's
// keyboard layout (arrows, Z/X for A/B, Enter for Start, right-Shift for
// Select). It is intentionally thin: no menu, ROM browser, or save-state
// UI — those are host conveniences outside this core's scope. Tab toggles
// an uncapped fast-forward mode and F3 toggles a debug overlay, mirroring
// the teacher's turbo/debug-readout keys in miniature.
type App struct {
	cfg   Config
	m     *vm.VM
	tex   *ebiten.Image
	fast  bool
	debug bool
}

// NewApp constructs an App around m, applying cfg.Defaults() and setting
// the initial window title/size. startFast seeds the Tab-toggled
// fast-forward state, letting the host start already uncapped (emu.Config's
// FastForward setting).
func NewApp(cfg Config, m *vm.VM, startFast bool) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	return &App{cfg: cfg, m: m, tex: ebiten.NewImage(160, 144), fast: startFast}
}

// Run blocks until the window is closed.
func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	a.pollInput()
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.fast = !a.fast
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		a.debug = !a.debug
	}
	a.m.RunUntilVBlank()
	if a.fast {
		for i := 0; i < 3; i++ {
			a.m.RunUntilVBlank()
		}
	}
	return nil
}

func (a *App) pollInput() {
	press := func(down bool, btn vm.Button) {
		if down {
			a.m.Press(btn)
		} else {
			a.m.Release(btn)
		}
	}
	press(ebiten.IsKeyPressed(ebiten.KeyArrowRight), vm.Right)
	press(ebiten.IsKeyPressed(ebiten.KeyArrowLeft), vm.Left)
	press(ebiten.IsKeyPressed(ebiten.KeyArrowUp), vm.Up)
	press(ebiten.IsKeyPressed(ebiten.KeyArrowDown), vm.Down)
	press(ebiten.IsKeyPressed(ebiten.KeyZ), vm.A)
	press(ebiten.IsKeyPressed(ebiten.KeyX), vm.B)
	press(ebiten.IsKeyPressed(ebiten.KeyEnter), vm.Start)
	press(ebiten.IsKeyPressed(ebiten.KeyShiftRight), vm.Select)
}

func (a *App) Draw(screen *ebiten.Image) {
	a.tex.WritePixels(a.m.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(a.tex, op)
	if a.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS: %.1f  fast: %v", ebiten.ActualTPS(), a.fast), 4, 4)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) { return 160, 144 }
