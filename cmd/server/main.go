// Package main starts the board game server after configuring it from
// supplied or standard arguments.
package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	m := newMainFlags(os.Args, os.LookupEnv)

	var buf bytes.Buffer
	log := log.New(&buf, "", log.LstdFlags)
	log.SetOutput(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg, g, err := serverConfig(ctx, m, log)
	if err != nil {
		log.Fatalf("configuring server: %v", err)
	}
	srv, err := cfg.New(g)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}

	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errC := make(chan error, 1)
	go func() { errC <- srv.Run(ctx) }()

	select {
	case err := <-errC:
		if err != nil {
			log.Printf("server stopped unexpectedly: %v", err)
		}
	case sig := <-done:
		log.Printf("handled %v", sig)
		if err := srv.Stop(); err != nil {
			log.Printf("stopping server: %v", err)
		}
		cancel()
		<-errC
	}
}
