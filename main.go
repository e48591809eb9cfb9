package main

import "building-planner/cmd"

func main() {
	cmd.Execute()
}
