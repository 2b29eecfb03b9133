package main

import "github.com/ahuang11/landsat-ml-cookbook/cmd"

func main() {
	cmd.Execute()
}
