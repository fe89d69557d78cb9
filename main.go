package main

import "github.com/khanhnv2901/iwtools/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
