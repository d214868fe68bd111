// The main package for the clubs-crawler executable.
package main

import (
	"github.com/JakeFAU/clubs-crawler/cmd"
)

func main() {
	cmd.Execute()
}
