// Command respd is the RESP protocol server's entry point.
package main

import "github.com/tonge3199/respd/cmd/respd/commands"

func main() {
	commands.Execute()
}
