// Package dictutil adapts the teacher's ConfigurationManager resource-resolution idiom
// down to the codec's narrower need: loading a FreeRADIUS dictionary from the local
// filesystem or an embedded filesystem, nothing more (no HTTP/DB origins — see DESIGN.md).
package dictutil

import (
	"context"
	"io/fs"
	"os"

	"github.com/InfinitTechnologies/Flexinets.Radius.Core/radius"
)

// LoadFromDir parses a FreeRADIUS dictionary tree rooted at dir/rootFile, following
// $INCLUDE directives relative to each including file's directory.
func LoadFromDir(ctx context.Context, dir string, rootFile string) (*radius.Dictionary, error) {
	return radius.ParseFreeradiusDictionaryFS(ctx, os.DirFS(dir), rootFile)
}

// LoadFromFS parses a FreeRADIUS dictionary tree rooted at rootFile within fsys (typically
// an embed.FS bundled into the host binary).
func LoadFromFS(ctx context.Context, fsys fs.FS, rootFile string) (*radius.Dictionary, error) {
	return radius.ParseFreeradiusDictionaryFS(ctx, fsys, rootFile)
}
