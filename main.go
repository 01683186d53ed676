package main

import (
	"log"

	"github.com/alderwick/gridsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
