package main

import "habitlink-backend/cmd"

func main() {
	cmd.Run()
}
