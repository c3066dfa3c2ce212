package main

import (
	"github.com/luma/shavar/cmd"
)

func main() {
	cmd.Execute()
}
