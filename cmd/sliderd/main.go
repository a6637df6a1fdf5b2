// Command sliderd is the camera slider's process entry point: it
// loads configuration, selects a stepper driver, constructs the
// controller, and owns its teardown. It has no HTTP listener — that
// boundary is out of scope — but is the composition root a real
// binary would extend with one.
package main

import (
	"context"
	"os"
	"time"

	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/BiologIC-Colin/CameraSlider/board"
	"github.com/BiologIC-Colin/CameraSlider/config"
	"github.com/BiologIC-Colin/CameraSlider/controller"
	"github.com/BiologIC-Colin/CameraSlider/presets"
)

// shutdownTimeout bounds how long Close is given to disable the
// driver and stop the worker once a shutdown signal arrives.
const shutdownTimeout = 5 * time.Second

func main() {
	goutils.ContextualMain(mainWithArgs, golog.NewDevelopmentLogger("sliderd"))
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := presets.NewStore(presetStorePath())
	if err != nil {
		return err
	}

	driver := board.NewDriver(cfg, logger)
	ctl := controller.New(cfg, driver, store, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return ctl.Close(closeCtx)
}

func presetStorePath() string {
	if p := os.Getenv("SLIDER_PRESETS_PATH"); p != "" {
		return p
	}
	return "presets.json"
}
