package main

import (
	"log"

	"gridlink/internal/config"
	"gridlink/internal/server"
)

func main() {
	s, err := server.New(config.Load())
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	s.Run()
}
