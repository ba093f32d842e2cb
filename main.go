package main

import (
	"github.com/nvoss/ontime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Die(err)
	}
}
