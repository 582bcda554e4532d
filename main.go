package main

import (
	"log"

	"github.com/alexsergeyev/skillforge/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
