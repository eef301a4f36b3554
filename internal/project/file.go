package project

import "strings"

// File is a named, typed blob belonging to one website. Text assets carry
// raw text in Content; images carry a base64 data URI.
type File struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// IsImage reports whether the file holds an inlined image.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// IsHTML reports whether the file is an HTML document by type or extension.
func (f File) IsHTML() bool {
	if f.Type == "text/html" {
		return true
	}
	return HasHTMLExt(f.Name)
}

// HasHTMLExt reports whether name ends in .html or .htm, ignoring case.
func HasHTMLExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".html") || strings.HasSuffix(n, ".htm")
}
