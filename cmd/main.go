package main

import (
	"context"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/yungbote/todo-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	a.Start()

	go func() {
		if err := a.Run(); err != nil {
			a.Log.Error("http server stopped", "error", err)
			a.Close()
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		a.Cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"app": func(ctx context.Context) error {
				a.Log.Info("Graceful shutdown initiated...")
				return a.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	os.Exit(exitCode)
}
