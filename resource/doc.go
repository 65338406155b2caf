// SPDX-License-Identifier: EPL-2.0

// Package resource turns local paths and URLs into resource identifiers that
// the decoding engine can open without misreading any part of them.
//
// The engine locates resources through a URL parser that treats several
// punctuation characters as delimiters. FromPath therefore builds the file:
// URI of a path and percent-escapes that punctuation, while keeping the first
// two colons literal so the scheme separator and a drive letter survive:
//
//	id, err := resource.FromPath(`c:\someDir\;:&=+@[]?\name.txt`)
//	// id == "file:/c:/someDir/%3B%3A%26%3D%2B%40%5B%5D%3F/name.txt"
//
// Remote resources are passed through FromURL, which only validates them.
package resource
