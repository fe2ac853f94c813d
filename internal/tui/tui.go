// Package tui is a terminal front end for one play session, drawn with tcell.
package tui

import (
	"context"
	"fmt"
	"sync"

	"othello_webapp/internal/board"
	"othello_webapp/internal/domain"
	"othello_webapp/internal/turn"

	"github.com/gdamore/tcell/v2"
)

// Controller is what the terminal drives.
type Controller interface {
	Click(row, col int)
	Reset()
}

const (
	originX = 2
	originY = 1
	cellW   = 2
)

var (
	styleBoard  = tcell.StyleDefault.Background(tcell.ColorDarkGreen).Foreground(tcell.ColorBlack)
	styleWhite  = styleBoard.Foreground(tcell.ColorWhite).Bold(true)
	styleBlack  = styleBoard.Foreground(tcell.ColorBlack).Bold(true)
	styleLegal  = styleBoard.Foreground(tcell.ColorYellow)
	styleText   = tcell.StyleDefault
	styleHint   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// App draws published views and turns keys and mouse clicks into controller
// calls. It is the controller's Sink.
type App struct {
	screen tcell.Screen
	ctrl   Controller

	mu   sync.Mutex
	view turn.View
	has  bool

	selRow, selCol int
}

func New(screen tcell.Screen) *App {
	return &App{screen: screen, selRow: 3, selCol: 3}
}

// Attach sets the controller that receives clicks and resets.
func (a *App) Attach(c Controller) {
	a.ctrl = c
}

// Publish stores the view and wakes the event loop to redraw it.
func (a *App) Publish(v turn.View) {
	a.mu.Lock()
	a.view = v
	a.has = true
	a.mu.Unlock()
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (a *App) current() (turn.View, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view, a.has
}

// Run owns the screen until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer a.screen.Fini()
	a.screen.EnableMouse()

	go func() {
		<-ctx.Done()
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx))
	}()

	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := a.handle(ev); quit {
			return nil
		}
		a.draw()
	}
}

func (a *App) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			if row, col, ok := cellAt(x, y); ok {
				a.selRow, a.selCol = row, col
				a.ctrl.Click(row, col)
			}
		}
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		a.moveSelection(-1, 0)
	case tcell.KeyDown:
		a.moveSelection(1, 0)
	case tcell.KeyLeft:
		a.moveSelection(0, -1)
	case tcell.KeyRight:
		a.moveSelection(0, 1)
	case tcell.KeyEnter:
		a.ctrl.Click(a.selRow, a.selCol)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			a.ctrl.Click(a.selRow, a.selCol)
		case 'r':
			a.ctrl.Reset()
		}
	}
	return false
}

func (a *App) moveSelection(dr, dc int) {
	if domain.InBounds(a.selRow+dr, a.selCol+dc) {
		a.selRow += dr
		a.selCol += dc
	}
}

// cellAt maps screen coordinates to a board cell.
func cellAt(x, y int) (row, col int, ok bool) {
	col = (x - originX - 2) / cellW
	row = y - originY - 1
	if x < originX+2 || !domain.InBounds(row, col) {
		return 0, 0, false
	}
	return row, col, true
}

func (a *App) draw() {
	s := a.screen
	s.Clear()

	v, ok := a.current()
	if !ok {
		drawText(s, originX, originY, styleHint, "Connecting to the engine...")
		s.Show()
		return
	}

	for c := 0; c < domain.BoardSize; c++ {
		drawText(s, originX+2+c*cellW, originY, styleHint, string(rune('A'+c)))
	}
	for r := 0; r < domain.BoardSize; r++ {
		y := originY + 1 + r
		drawText(s, originX, y, styleHint, fmt.Sprintf("%d", r+1))
		for c := 0; c < domain.BoardSize; c++ {
			mark := v.Board[r][c]
			st := markStyle(mark)
			if r == a.selRow && c == a.selCol {
				st = st.Background(tcell.ColorOlive)
			}
			x := originX + 2 + c*cellW
			s.SetContent(x, y, mark.Glyph(), nil, st)
			s.SetContent(x+1, y, ' ', nil, styleBoard)
		}
	}

	y := originY + domain.BoardSize + 2
	drawText(s, originX, y, styleText, fmt.Sprintf("You play %s (%c)", v.Side, sideGlyph(v.Side)))
	if v.Indicator != "" {
		drawText(s, originX, y+1, styleHint, v.Indicator)
	}
	if v.MessageVisible {
		drawText(s, originX, y+2, styleText, v.Message)
	}
	drawText(s, originX, y+4, styleHint, "arrows/mouse: select  enter/space: play  r: reset  q: quit")
	s.Show()
}

func markStyle(m board.Mark) tcell.Style {
	switch m {
	case board.MarkBlack:
		return styleBlack
	case board.MarkWhite:
		return styleWhite
	case board.MarkAffordance:
		return styleLegal
	default:
		return styleBoard
	}
}

func sideGlyph(s domain.Side) rune {
	if s == domain.SideWhite {
		return board.MarkWhite.Glyph()
	}
	return board.MarkBlack.Glyph()
}

func drawText(s tcell.Screen, x, y int, st tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, st)
	}
}
