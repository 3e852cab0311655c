package main

import "github.com/kamusis/orient-cli/cmd"

func main() {
	cmd.Execute()
}
