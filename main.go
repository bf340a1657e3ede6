package main

import "github.com/xhad/jaundice/cmd"

func main() {
	cmd.Execute()
}
