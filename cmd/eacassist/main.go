package main

import "github.com/eacsecretariat/eacassist/internal/commands"

func main() {
	commands.Execute()
}
