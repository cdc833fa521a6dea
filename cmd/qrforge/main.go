package main

import "github.com/yuzeguitarist/qrforge/internal/cmd"

func main() {
	cmd.Execute()
}
