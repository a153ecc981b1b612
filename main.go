package main

import (
	"github.com/banbox/banseed/entry"
)

func main() {
	entry.RunCmd()
}
