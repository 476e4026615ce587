package main

import "github.com/croxxed/mangamux/cmd"

func main() {
	cmd.Execute()
}
