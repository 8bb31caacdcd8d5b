// shop is the command-line front end of the shop API: account commands,
// admin catalog commands and an interactive terminal cart.
//
//	shop register --name Ana --email ana@example.com --role admin
//	shop login --email ana@example.com
//	shop products add --code W-1 --name Widget --price 9.99
//	shop products search --code w- [--all]
//	shop cart [--catalog cards.json | --from-api]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
