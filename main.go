package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func init() {
	// Diagnostics go through log/slog, anything printed with the std logger
	// by dependencies is dropped.
	log.SetOutput(io.Discard)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := root(ctx, os.Args[1:]...)
	stop()
	os.Exit(code)
}
