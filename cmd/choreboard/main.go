package main

import (
	"log"

	"chore-board/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		log.Fatalf("choreboard: %v", err)
	}
}
