package main

import "github.com/chuanzhidong/bambi/cmd"

// TODO: trace file output for posterior draws (CSV or JSON per variable)

func main() {
	cmd.Execute()
}
