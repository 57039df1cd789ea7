package main

import (
	"DailyFM/cmd"
)

func main() {
	cmd.Execute()
}
