package main

import "github.com/brogergvhs/mangatoc/cmd"

func main() {
	cmd.Execute()
}
