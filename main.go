package main

import "github.com/mkovarik/faceattend/cmd"

func main() {
	cmd.Execute()
}
