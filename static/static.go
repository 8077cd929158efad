// Package static holds the embedded view templates and public text files.
package static

import "embed"

//go:embed views/*.html
var Views embed.FS

//go:embed robots.txt
var RobotsTxt string
