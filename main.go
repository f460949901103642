package main

import "github.com/Sosuo3773/openlab-mini/cmd"

func main() {
	cmd.Execute()
}
