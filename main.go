package main

import (
	"github.com/lehigh-university-libraries/geowaf/cmd"
)

func main() {
	cmd.Execute()
}
