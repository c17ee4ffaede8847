//go:build gui

package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/dlemaire/skim/internal/rsvp"
)

const defaultFontSize float32 = 72

func createWordDisplay(word rsvp.Word, fontSize float32, windowWidth float32) *fyne.Container {
	runes := []rune(word.Text)
	orp := word.ORPIndex
	if orp >= len(runes) {
		orp = len(runes) - 1
	}
	if orp < 0 {
		orp = 0
	}

	before := ""
	focus := ""
	after := ""
	if len(runes) > 0 {
		before = string(runes[:orp])
		focus = string(runes[orp])
		if orp+1 < len(runes) {
			after = string(runes[orp+1:])
		}
	}

	beforeText := canvas.NewText(before, color.White)
	beforeText.TextSize = fontSize
	beforeText.TextStyle.Bold = true

	focusText := canvas.NewText(focus, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	focusText.TextSize = fontSize
	focusText.TextStyle.Bold = true

	afterText := canvas.NewText(after, color.White)
	afterText.TextSize = fontSize
	afterText.TextStyle.Bold = true

	beforeSize := beforeText.MinSize()
	focusSize := focusText.MinSize()

	// Horizontal: anchor the recognition point at center
	centerX := windowWidth / 2
	beforeX := centerX - beforeSize.Width
	focusX := centerX
	afterX := centerX + focusSize.Width

	if beforeX < 0 {
		beforeX = 0
	}

	c := &fyne.Container{
		Layout: &centerVerticalLayout{},
		Objects: []fyne.CanvasObject{
			beforeText,
			focusText,
			afterText,
		},
	}

	beforeText.Move(fyne.NewPos(beforeX, 0))
	focusText.Move(fyne.NewPos(focusX, 0))
	afterText.Move(fyne.NewPos(afterX, 0))

	return c
}

type centerVerticalLayout struct{}

func (l *centerVerticalLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var maxH float32
	for _, o := range objects {
		size := o.MinSize()
		if size.Height > maxH {
			maxH = size.Height
		}
	}
	return fyne.NewSize(0, maxH)
}

func (l *centerVerticalLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	var maxH float32
	for _, o := range objects {
		objSize := o.MinSize()
		if objSize.Height > maxH {
			maxH = objSize.Height
		}
	}

	y := (size.Height - maxH) / 2
	if y < 0 {
		y = 0
	}

	for _, o := range objects {
		pos := o.Position()
		o.Move(fyne.NewPos(pos.X, y))
		o.Resize(o.MinSize())
	}
}

func runHost(application *App) error {
	engine := application.Engine

	a := app.New()
	w := a.NewWindow("skim - " + application.Title)

	statusLabel := widget.NewLabel("")
	statusLabel.Alignment = fyne.TextAlignCenter

	controlsLabel := widget.NewLabel("SPACE: pause  ↑/↓: speed  ←/→: skip  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	wordContainer := container.NewStack()
	choiceOverlay := container.NewStack()

	content := container.NewBorder(
		statusLabel,
		controlsLabel,
		nil, nil,
		container.NewStack(wordContainer, choiceOverlay),
	)

	updateDisplay := func() {
		state := engine.State()

		canvasWidth := w.Canvas().Size().Width
		if canvasWidth <= 0 {
			canvasWidth = 800
		}

		var display fyne.CanvasObject
		if count := engine.Countdown(); count > 0 {
			text := canvas.NewText(fmt.Sprintf("%d", count), color.RGBA{R: 0, G: 170, B: 255, A: 255})
			text.TextSize = defaultFontSize
			text.TextStyle.Bold = true
			text.Alignment = fyne.TextAlignCenter
			display = container.NewCenter(text)
		} else if word, ok := engine.CurrentWord(); ok {
			display = createWordDisplay(word, defaultFontSize, canvasWidth)
		} else {
			display = container.NewCenter(widget.NewLabel("Preparing..."))
		}
		wordContainer.Objects = []fyne.CanvasObject{display}
		wordContainer.Refresh()

		pauseText := ""
		if state.Active && !state.Playing && engine.Countdown() == 0 {
			pauseText = " [PAUSED]"
		}
		statusLabel.SetText(fmt.Sprintf("%s | Word %d/%d | %d WPM%s",
			application.SectionTitle(),
			state.CurrentIndex+1,
			state.TotalWords,
			state.WPM,
			pauseText))
	}

	showStartChoice := func(choice rsvp.StartChoice) {
		commit := func(fn func()) func() {
			return func() {
				choiceOverlay.Objects = nil
				choiceOverlay.Refresh()
				go fn()
			}
		}
		buttons := container.NewVBox(
			widget.NewLabel("Resume reading?"),
			widget.NewButton("Resume where you left off", commit(engine.StartFromSavedPosition)),
			widget.NewButton("Start from the beginning", commit(engine.StartFromBeginning)),
			widget.NewButton("Start from the current position", commit(engine.StartFromCurrentPosition)),
		)
		choiceOverlay.Objects = []fyne.CanvasObject{container.NewCenter(buttons)}
		choiceOverlay.Refresh()
	}

	engine.OnStateChange(func(rsvp.State) { fyne.Do(updateDisplay) })
	engine.OnCountdownChange(func(int) { fyne.Do(updateDisplay) })
	engine.OnStartChoice(func(choice rsvp.StartChoice) {
		if choice.HasSavedPosition {
			fyne.Do(func() { showStartChoice(choice) })
			return
		}
		go engine.StartFromBeginning()
	})
	engine.OnPageRequest(func() {
		go func() {
			if ok, err := application.NextSection(); err != nil || !ok {
				engine.Stop()
			}
		}()
	})

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			go engine.TogglePlayPause()

		case fyne.KeyUp:
			go engine.IncreaseSpeed()

		case fyne.KeyDown:
			go engine.DecreaseSpeed()

		case fyne.KeyLeft:
			go engine.SkipBackward(0)

		case fyne.KeyRight:
			go engine.SkipForward(0)

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			// Stop persists the position before the window goes away.
			engine.Stop()
			a.Quit()
		}
	})

	w.SetOnClosed(func() {
		engine.Stop()
	})

	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(content)

	go engine.RequestStart("")

	w.ShowAndRun()
	return nil
}
