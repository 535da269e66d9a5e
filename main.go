package main

import "github.com/yeremiapane/restaurant-reservation/commands"

func main() {
	commands.Execute()
}
