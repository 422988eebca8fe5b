package main

import (
	"github.com/DrSkyle/knapsack-ga/cmd/knapsack/commands"
)

func main() {
	commands.Execute()
}
