package video

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Window shows frames and waits for a key press after each one.
type Window struct {
	window *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays img and blocks until a key is pressed.
func (w *Window) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("failed to convert frame for display: %w", err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	w.window.WaitKey(0)
	return nil
}

func (w *Window) Close() {
	w.window.Close()
}
