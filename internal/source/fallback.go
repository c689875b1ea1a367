package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// FileFallbackSource reads a local transcript when the upstream provider has
// none, per spec §4.6 "a filesystem-based transcript fallback is consulted
// when transcript(...) returns null". The orchestrator, not FileFallbackSource
// itself, decides when to consult it.
type FileFallbackSource struct {
	root string
}

// NewFileFallbackSource returns a fallback that reads transcript files
// directly under root.
func NewFileFallbackSource(root string) *FileFallbackSource {
	return &FileFallbackSource{root: root}
}

// Transcript reads {root}/{TICKER}_Q{quarter}_{year}.txt, returning nil if
// the file does not exist.
func (f *FileFallbackSource) Transcript(_ context.Context, ticker string, year, quarter int) (*TranscriptRecord, error) {
	name := fmt.Sprintf("%s_Q%d_%d.txt", strings.ToUpper(ticker), quarter, year)
	path := filepath.Join(f.root, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: read fallback transcript %s", path)
	}

	return &TranscriptRecord{Text: string(data)}, nil
}
