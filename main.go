package main

import "splotty-labels/cmd"

func main() {
	cmd.Execute()
}
