package main

import "github.com/auditpack/auditpack/cmd/auditpack"

func main() { auditpack.Execute() }
