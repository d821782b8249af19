package main

import "github.com/fmanzoor3/tiq-assistant/cmd"

func main() {
	cmd.Execute()
}
