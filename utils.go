package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("🛑 Graceful shutdown initiated...")
		cancel()
		close(jobQueue)
		// Let workers finish gracefully
		log.Println("✅ Graceful shutdown completed")
		os.Exit(0)
	}()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncate(s, 200)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
