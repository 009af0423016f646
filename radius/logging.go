package radius

import "go.uber.org/zap"

// packageLogger is used for warn-and-skip paths during packet parsing; dictionary loading
// does not log.
// Defaults to a no-op so the codec costs nothing when the host does not care about logs.
var packageLogger = zap.NewNop().Sugar()

// SetLogger installs the logger used for non-fatal codec diagnostics: skipped attributes,
// dictionary misses, and similar recoverable conditions. Pass nil to go back to the no-op
// default. The codec never creates its own zap.Config; the host owns sink/encoder setup.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		packageLogger = zap.NewNop().Sugar()
		return
	}
	packageLogger = l
}
