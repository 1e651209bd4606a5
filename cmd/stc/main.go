package main

import "martianoff/stc/cmd/stc/commands"

func main() {
	commands.Execute()
}
