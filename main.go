package main

import "car-rental/cmd"

func main() {
	cmd.Execute()
}
