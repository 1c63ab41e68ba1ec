// Package web holds the page and thin client bundled into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html client.js site.css
var files embed.FS

// Files returns the bundled files.
func Files() fs.FS {
	return files
}
