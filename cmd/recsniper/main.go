package main

import "github.com/example/rec-sniper/cmd"

func main() {
	cmd.Execute()
}
