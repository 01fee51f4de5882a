package paramconfig

import (
	"embed"
	"io/fs"
)

// RuntimeScript is the file name of the browser runtime inside
// RuntimeAssetsFS.
const RuntimeScript = "paramconfig.js"

//go:embed runtime/*.js
var embeddedRuntimeAssets embed.FS

// RuntimeAssetsFS exposes the browser runtime that wires the rendered form
// to the websocket endpoint.
//
// Typical mount:
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(paramconfig.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "runtime")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
