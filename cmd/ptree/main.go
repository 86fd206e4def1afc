package main

import "github.com/emrgen/programtree/cmd"

func main() {
	cmd.Execute()
}
