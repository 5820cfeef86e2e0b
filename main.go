package main

import "github.com/scienceol/playawake/cmd"

func main() {
	cmd.Execute()
}
