// Package resources embeds the default FreeRADIUS-format dictionary tree shipped with
// this module, so a host that does not supply its own dictionary files can still parse
// a Dictionary directly out of the binary.
package resources

import (
	"embed"
)

//go:embed dictionary
var DictionaryFS embed.FS

// DefaultDictionaryRoot is the root file to pass to
// dictutil.LoadFromFS(ctx, DictionaryFS, DefaultDictionaryRoot).
const DefaultDictionaryRoot = "dictionary/dictionary"
