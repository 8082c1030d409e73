package main

import (
	"log"

	"github.com/Joaquin123L/eventhub/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
