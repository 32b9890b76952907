package main

import "github.com/robocy-lab/robo-lab/cmd"

func main() {
	cmd.Execute()
}
