package main

import "datadeck/cmd"

func main() {
	cmd.Execute()
}
