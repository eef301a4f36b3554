package main

import "github.com/KaramelBytes/sitesmith-cli/cmd"

func main() {
	cmd.Execute()
}
