package main

import (
	"os"

	"github.com/seamarkbio/AsvKit/asvkit/cmd"
)

func main() {
	cmd.Execute(os.Args[1:])
}
