// Command material_sandbox shows meshes with every material model and lets
// the material, the light and post-processing be tuned live.
package main

import (
	"os"

	"material-sandbox/app"
	"material-sandbox/sandbox"
)

func main() {
	os.Exit(sandbox.Run(os.Args, os.Stdout, os.Stderr, app.Launch))
}
