package main

import "github.com/TharinduNimesh/apiforge/cmd"

func main() {
	cmd.Execute()
}
