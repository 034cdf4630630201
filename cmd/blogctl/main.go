// Command blogctl talks to a blogserver.
//
// Usage:
//
//	blogctl [--server host:port] [--format json|yaml] <command> [args]
//
// Commands:
//
//	list            list all posts
//	get <id>        show one post
//	create          create a post from --data or -f
//	replace <id>    replace a post with --data or -f
//	patch <id>      merge --data or -f into a post
//	delete <id>     delete a post
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
