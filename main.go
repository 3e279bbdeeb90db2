package main

import "github.com/aucplan/coursegraph/cmd"

func main() {
	cmd.Execute()
}
