// Command svctl is a CLI client for interacting with a SICK
// SafeVisionary2 device over the CoLa control channel.
package main

import "github.com/sick-safevisionary/govisionary/cmd/svctl/commands"

func main() {
	commands.Execute()
}
