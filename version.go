package arbor

import _ "embed"

// Version is the release version of Arbor, read from the VERSION file.
//
//go:embed VERSION
var Version string
