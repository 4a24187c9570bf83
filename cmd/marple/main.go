package main

import "github.com/ensoft/marple/internal/cmd"

func main() {
	cmd.Execute()
}
