package main

import "github.com/alexiusacademia/gohyst/cmd"

func main() {
	cmd.Execute()
}
