package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"tgwctl/internal/warehouse"
)

// Document is one payload ready to write: an absolute destination path
// and the rendered body.
type Document struct {
	Path string
	Body []byte
}

// WriteError records a single failed document write. Emission of the
// remaining documents continues; the caller reports the collection.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Emitter writes rendered documents to the application's configuration
// directories, creating them as needed and overwriting unconditionally.
type Emitter struct {
	log *zap.Logger
}

func NewEmitter(log *zap.Logger) *Emitter {
	return &Emitter{log: log}
}

// Emit writes one document atomically (temp file, then rename) and
// returns the destination path.
func (e *Emitter) Emit(doc Document) (string, error) {
	if err := os.MkdirAll(filepath.Dir(doc.Path), 0755); err != nil {
		return "", &WriteError{Path: doc.Path, Err: err}
	}

	tmp := doc.Path + ".tmp"
	if err := os.WriteFile(tmp, doc.Body, 0644); err != nil {
		return "", &WriteError{Path: doc.Path, Err: err}
	}
	if err := os.Rename(tmp, doc.Path); err != nil {
		os.Remove(tmp)
		return "", &WriteError{Path: doc.Path, Err: err}
	}

	e.log.Debug("emitted document", zap.String("path", doc.Path), zap.Int("bytes", len(doc.Body)))
	return doc.Path, nil
}

// EmitAll writes every document, collecting per-document failures
// instead of aborting. Returns the paths written and the failures.
func (e *Emitter) EmitAll(docs []Document) ([]string, []*WriteError) {
	var written []string
	var failed []*WriteError
	for _, doc := range docs {
		path, err := e.Emit(doc)
		if err != nil {
			var we *WriteError
			if !errors.As(err, &we) {
				we = &WriteError{Path: doc.Path, Err: err}
			}
			failed = append(failed, we)
			e.log.Warn("document write failed", zap.String("path", doc.Path), zap.Error(err))
			continue
		}
		written = append(written, path)
	}
	return written, failed
}

// ============================================================================
// Document assembly
// ============================================================================

// PresetDocs renders the built-in presets into repoDir/presets.
func PresetDocs(repoDir string) ([]Document, error) {
	var docs []Document
	for _, p := range BuiltinPresets() {
		body, err := p.RenderJSON()
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{
			Path: filepath.Join(repoDir, "presets", p.Filename()),
			Body: body,
		})
	}
	return docs, nil
}

// CharacterDocs renders the built-in character cards into
// repoDir/characters.
func CharacterDocs(repoDir string) ([]Document, error) {
	var docs []Document
	for _, c := range BuiltinCharacters() {
		body, err := c.Encode()
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{
			Path: filepath.Join(repoDir, "characters", c.Filename()),
			Body: body,
		})
	}
	return docs, nil
}

// GuideDocs renders the operator docs into playbookDir/docs.
func GuideDocs(playbookDir string, layout warehouse.Layout) []Document {
	return []Document{
		{
			Path: filepath.Join(playbookDir, "docs", "warehouse.md"),
			Body: []byte(WarehouseGuide(layout)),
		},
		{
			Path: filepath.Join(playbookDir, "docs", "presets.md"),
			Body: []byte(PresetCheatSheet(BuiltinPresets())),
		},
	}
}

// ExpectedPaths lists every file a full emit produces. The auditor uses
// this so the existence checks can never drift from what emit writes.
func ExpectedPaths(repoDir, playbookDir string, layout warehouse.Layout) ([]string, error) {
	presets, err := PresetDocs(repoDir)
	if err != nil {
		return nil, err
	}
	chars, err := CharacterDocs(repoDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range presets {
		out = append(out, d.Path)
	}
	for _, d := range chars {
		out = append(out, d.Path)
	}
	for _, d := range GuideDocs(playbookDir, layout) {
		out = append(out, d.Path)
	}
	return out, nil
}
