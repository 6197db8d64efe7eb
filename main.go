package main

import (
	"os"

	"github.com/campusgrid/timetable/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
