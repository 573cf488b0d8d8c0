package main

import (
	"log"

	"github.com/faridlogistics/freightcrm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
