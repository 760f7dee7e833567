package main

import (
	"pco2proc/internal/cmd"
)

func main() {
	cmd.Execute()
}
