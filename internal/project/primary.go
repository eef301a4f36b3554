package project

import "strings"

// SelectPrimary picks the file that represents a website: index.html, then
// home.html, then the first .html/.htm file in input order. Returns nil when
// no HTML-like file exists.
func SelectPrimary(files []File) *File {
	for _, want := range []string{"index.html", "home.html"} {
		for i := range files {
			if strings.ToLower(files[i].Name) == want {
				return &files[i]
			}
		}
	}
	for i := range files {
		if HasHTMLExt(files[i].Name) {
			return &files[i]
		}
	}
	return nil
}

// FindFile returns the file with the given name (case-insensitive).
func FindFile(files []File, name string) *File {
	for i := range files {
		if strings.EqualFold(files[i].Name, name) {
			return &files[i]
		}
	}
	return nil
}
