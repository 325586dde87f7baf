package main

import (
	dartcccmd "github.com/zopnote/dartcc/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	dartcccmd.SetVersionInfo(version, commit)
	dartcccmd.Execute()
}
