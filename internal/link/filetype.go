package link

import (
	"mime"
	"path/filepath"
	"strings"
)

// FileType is the expected content category derived from a link's extension
type FileType string

const (
	TypeHTML     FileType = "html"
	TypeImage    FileType = "image"
	TypeScript   FileType = "script"
	TypeStyle    FileType = "style"
	TypeDocument FileType = "document"
	TypeText     FileType = "text"
	TypeXML      FileType = "xml"
	TypeArchive  FileType = "archive"
	TypeOther    FileType = "other"
)

var extensionTypes = map[string]FileType{
	".htm":  TypeHTML,
	".html": TypeHTML,
	".jpg":  TypeImage,
	".jpeg": TypeImage,
	".png":  TypeImage,
	".gif":  TypeImage,
	".bmp":  TypeImage,
	".svg":  TypeImage,
	".ico":  TypeImage,
	".webp": TypeImage,
	".js":   TypeScript,
	".css":  TypeStyle,
	".pdf":  TypeDocument,
	".txt":  TypeText,
	".xml":  TypeXML,
	".zip":  TypeArchive,
	".rar":  TypeArchive,
	".7z":   TypeArchive,
}

// GuessExpectedType maps a link's extension to its expected content
// category. Unmapped extensions are TypeOther.
func GuessExpectedType(raw string) FileType {
	ext := strings.ToLower(filepath.Ext(StripFragment(raw)))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return TypeOther
}

// CheckFileType reports whether the file at path plausibly matches the
// expected category. The check is lenient: it passes when the expected
// type is other, when the actual MIME type cannot be determined, and when
// the categories agree. Verification favors crawl completeness over the
// low signal of MIME mismatches, so an uncertain comparison also passes.
func CheckFileType(path string, expected FileType) bool {
	if expected == TypeOther {
		return true
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		return true
	}

	switch expected {
	case TypeHTML:
		if strings.Contains(mimeType, "html") {
			return true
		}
	case TypeImage:
		if strings.HasPrefix(mimeType, "image/") {
			return true
		}
	case TypeScript:
		if strings.Contains(mimeType, "javascript") {
			return true
		}
	case TypeStyle:
		if strings.Contains(mimeType, "css") {
			return true
		}
	case TypeDocument:
		if strings.Contains(mimeType, "pdf") {
			return true
		}
	case TypeText:
		if strings.Contains(mimeType, "text") {
			return true
		}
	case TypeXML:
		if strings.Contains(mimeType, "xml") {
			return true
		}
	case TypeArchive:
		if strings.Contains(mimeType, "zip") || strings.Contains(mimeType, "rar") {
			return true
		}
	}

	// The extension table and the MIME registry disagree about a file that
	// exists. That is not confident evidence of a dead link.
	return true
}
