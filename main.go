package main

import "campus-sports-cli/cmd"

func main() {
	cmd.Execute()
}
