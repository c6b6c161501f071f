package main

import "coursekeeper/cmd/client/cmd"

func main() {
	cmd.Execute()
}
