package main

import "roster-workbench/cmd"

func main() {
	cmd.Execute()
}
