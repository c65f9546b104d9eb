package main

import "github.com/bsaid97/go-polygon-stitcher/cmd"

func main() {
	cmd.Execute()
}
