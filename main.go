package main

import "github.com/cinesync/cinesync/cmd"

func main() {
	cmd.Execute()
}
