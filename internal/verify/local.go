package verify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/avsol/linkrot/internal/link"
	"github.com/avsol/linkrot/internal/model"
)

// CheckLocal verifies a local link against the filesystem under root.
// sourcePath is the manifest-relative path of the referencing document.
// The returned bool reports whether the link failed and the record should
// be written; passing links produce no record at all.
func CheckLocal(root, sourcePath, raw string) (model.VerificationRecord, bool) {
	sourceAbs := filepath.Join(root, filepath.FromSlash(sourcePath))
	targetAbs := link.Resolve(raw, sourceAbs)
	resolved := relToRoot(root, targetAbs)

	info, err := os.Stat(targetAbs)
	if err != nil {
		return model.VerificationRecord{
			SourceFile:   sourcePath,
			Link:         raw,
			Reason:       "File not found",
			ResolvedPath: resolved,
			Detail:       "The resolved target does not exist on disk.",
		}, true
	}

	if info.IsDir() {
		return model.VerificationRecord{
			SourceFile:   sourcePath,
			Link:         raw,
			Reason:       "Not a file (directory)",
			ResolvedPath: resolved,
			Detail:       "The resolved target is a directory, not a file.",
		}, true
	}

	expected := link.GuessExpectedType(raw)
	if !link.CheckFileType(targetAbs, expected) {
		return model.VerificationRecord{
			SourceFile:   sourcePath,
			Link:         raw,
			Reason:       "Invalid file type",
			ResolvedPath: resolved,
			Detail:       "The file's content type does not match the category implied by the link's extension.",
		}, true
	}

	return model.VerificationRecord{}, false
}

// relToRoot renders a resolved target relative to the scan root. Targets
// outside the root (root-absolute links) are reported by their resolved
// path unchanged.
func relToRoot(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
