package main

import (
	"log"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
