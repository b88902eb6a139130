package main

import (
	"os"

	_ "github.com/viant/afsc/aws"
	_ "github.com/viant/afsc/gcp"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	cli "github.com/eazerepy/eazerepy/cmd/eazerepy"
)

func main() {
	cli.Run(os.Args[1:])
}
