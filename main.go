package main

import "distrolabs/wslm/cmd"

func main() {
	cmd.Execute()
}
