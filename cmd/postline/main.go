package main

import (
	"log"

	"github.com/tech-arch1tect/postline"
)

func main() {
	app, err := postline.New(nil)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	app.Run()
}
