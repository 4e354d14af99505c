package main

import "github.com/guzus/relay/cmd"

func main() {
	cmd.Execute()
}
