package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"prism/src/render"
)

type window interface {
	ShouldClose() bool
	PollEvents()
}

// drive draws frames until the window asks to close or ctx is done. Dropped
// frames are skipped; any other error stops the loop. The device is idle
// when drive returns.
func drive(ctx context.Context, rc render.Context, win window, log *slog.Logger) error {
	var drawn, dropped int
	for !win.ShouldClose() && ctx.Err() == nil {
		win.PollEvents()
		err := rc.DrawFrame()
		switch {
		case err == nil:
			drawn++
		case errors.Is(err, render.ErrFrameDropped):
			dropped++
		default:
			if idleErr := rc.WaitIdle(); idleErr != nil {
				log.Error("wait idle", "err", idleErr)
			}
			return errors.Wrap(err, "draw frame")
		}
	}
	log.Info("frame loop stopped", "drawn", drawn, "dropped", dropped)
	return rc.WaitIdle()
}
