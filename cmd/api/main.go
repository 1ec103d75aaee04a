package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todoSaas/internal/app"
	"todoSaas/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "конфигурация:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "инициализация:", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "запуск:", err)
		os.Exit(1)
	}
}
