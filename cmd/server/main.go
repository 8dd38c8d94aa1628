// Package main runs the dovelink URL shortener.
//
//	@title			Dovelink URL Shortener API
//	@version		1.0
//	@description	Shortens URLs into stable codes, resolves them and reports the most shortened domains
//	@host			localhost:8080
//	@BasePath		/
//	@schemes		http https
package main

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	dovefx "github.com/sp3dr4/dovelink/internal/fx"
)

func main() {
	fx.New(
		dovefx.HTTPServerModules,
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
	).Run()
}
