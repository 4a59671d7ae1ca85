package main

import (
	"context"
	"ll-analytics/cmd/llsync/commands"
	"ll-analytics/lib/osutil"
	"ll-analytics/lib/serviceutil"
	"ll-analytics/lib/telemetry"
	"log/slog"
)

func main() {
	ctx, stop := osutil.SignalContext(context.Background())
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "llsync")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer func() {
		err := tel.Shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}()

	commands.ExecuteContext(ctx)
}
