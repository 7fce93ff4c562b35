package shiftmatrix_test

import (
	"log"
	"os"
	"os/signal"

	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

func Example() {
	drv := gpio.NewCdevDriver("gpiochip0", nil)
	defer drv.Close()

	r := shiftmatrix.New(drv, shiftmatrix.WithPins(shiftmatrix.DefaultPins))
	if err := r.Start(func(e shiftmatrix.Event) {
		log.Printf("button: %s", e)
	}); err != nil {
		log.Printf("Failed to start renderer: %v", err)
		return
	}

	// Draw a diagonal
	var f shiftmatrix.Frame
	for i := 0; i < shiftmatrix.Width; i++ {
		f.Set(i, i, true)
	}
	r.Render(&f)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	if err := r.Stop(); err != nil {
		log.Printf("Failed to stop renderer: %v", err)
	}
}
