package main

import (
	"os"
	"path/filepath"
)

// os
var (
	ex, _  = os.Executable()
	exPath = filepath.Dir(ex)
)
