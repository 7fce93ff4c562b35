package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fkcurrie/omega-matrix-golang/pkg/gpio"
)

func main() {
	backend := flag.String("backend", gpio.BackendCdev, "gpio backend (cdev, sysfs, omega2)")
	chip := flag.String("chip", "", "gpiochip name or sysfs root")
	out := flag.Int("out", 2, "output pin to toggle")
	in := flag.Int("in", 19, "input pin to watch")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Set up signal handler for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting gpio test", zap.String("backend", *backend), zap.Int("out", *out), zap.Int("in", *in))

	drv, err := gpio.Open(*backend, *chip, logger)
	if err != nil {
		logger.Fatal("failed to open driver", zap.Error(err))
	}
	defer drv.Close()

	if err := drv.SetDirection(*out, gpio.Output); err != nil {
		logger.Fatal("failed to configure output", zap.Error(err))
	}
	if err := drv.SetDirection(*in, gpio.Input); err != nil {
		logger.Fatal("failed to configure input", zap.Error(err))
	}

	// Toggle the output every second and report input edges until terminated
	toggle := time.NewTicker(time.Second)
	defer toggle.Stop()
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	value, last := 0, -1
	for {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			return
		case <-toggle.C:
			value ^= 1
			if err := drv.Write(*out, value); err != nil {
				logger.Warn("failed to set value", zap.Error(err))
				continue
			}
			logger.Info("set output", zap.Int("pin", *out), zap.Int("value", value))
		case <-poll.C:
			v, err := drv.Read(*in)
			if err != nil {
				logger.Warn("failed to read input", zap.Error(err))
				continue
			}
			if v != last {
				logger.Info("input changed", zap.Int("pin", *in), zap.Int("value", v))
				last = v
			}
		}
	}
}
