package main

import "github.com/uklance/gradle-dependency-export/cli/cmd"

func main() {
	cmd.Execute()
}
