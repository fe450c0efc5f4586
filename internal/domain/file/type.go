package file

import (
	"path/filepath"
	"strings"
)

type Type string

const (
	TypeImage    Type = "image"
	TypeDocument Type = "document"
	TypeVideo    Type = "video"
	TypeAudio    Type = "audio"
	TypeOther    Type = "other"
)

var Types = []Type{TypeImage, TypeDocument, TypeVideo, TypeAudio, TypeOther}

var extensionTypes = map[string]Type{}

func init() {
	for t, exts := range map[Type][]string{
		TypeDocument: {
			"pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "odp", "md",
			"html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd", "sketch", "afdesign", "afphoto",
		},
		TypeImage: {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
		TypeVideo: {"mp4", "avi", "mov", "mkv", "webm"},
		TypeAudio: {"mp3", "wav", "ogg", "flac"},
	} {
		for _, ext := range exts {
			extensionTypes[ext] = t
		}
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeImage, TypeDocument, TypeVideo, TypeAudio, TypeOther:
		return true
	}
	return false
}

// Classify derives the semantic type and lower-cased extension (without the
// dot) from a file name.
func Classify(name string) (Type, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return TypeOther, ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return TypeOther, ext
}

// IsPDF reports whether the file should go through text extraction.
func IsPDF(ext string) bool { return strings.EqualFold(ext, "pdf") }

// ListingPath is the dashboard route that lists files of type t.
func ListingPath(t Type) string {
	switch t {
	case TypeDocument:
		return "/documents"
	case TypeImage:
		return "/images"
	case TypeVideo, TypeAudio:
		return "/media"
	default:
		return "/others"
	}
}
