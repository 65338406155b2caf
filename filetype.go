// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"fmt"
	"strings"

	"github.com/ik5/audstream/resource"
)

// FileType tags the container of a resource by its extension.
type FileType struct {
	Name      string
	Extension string
	// Protected marks DRM protected containers.
	Protected bool
	// Synthesized is set for extensions outside the known table.
	Synthesized bool
}

func (t FileType) String() string { return t.Name }

var (
	TypeAAC        = FileType{Name: "AAC", Extension: "m4a"}
	TypeAACRaw     = FileType{Name: "AAC", Extension: "aac"}
	TypeAACDRM     = FileType{Name: "AAC", Extension: "m4p", Protected: true}
	TypeMPEG4Video = FileType{Name: "MPEG-4 Video", Extension: "m4v"}
	TypeMP1        = FileType{Name: "MP1", Extension: "mp1"}
	TypeMP3        = FileType{Name: "MP3", Extension: "mp3"}
	TypeMP4        = FileType{Name: "MP4", Extension: "mp4"}
	TypeWAVE       = FileType{Name: "WAVE", Extension: "wav"}
	TypeAIFF       = FileType{Name: "AIFF", Extension: "aif"}
	TypeAIFC       = FileType{Name: "AIFF-C", Extension: "aifc"}
	TypeASF        = FileType{Name: "ASF", Extension: "asf"}
	TypeWMA        = FileType{Name: "WMA", Extension: "wma"}
	TypeWMV        = FileType{Name: "WMV", Extension: "wmv"}
)

var fileTypes = map[string]FileType{
	"aac":  TypeAACRaw,
	"m4a":  TypeAAC,
	"m4p":  TypeAACDRM,
	"m4v":  TypeMPEG4Video,
	"mp1":  TypeMP1,
	"mp3":  TypeMP3,
	"mp4":  TypeMP4,
	"wav":  TypeWAVE,
	"aif":  TypeAIFF,
	"aiff": TypeAIFF,
	"aifc": TypeAIFC,
	"asf":  TypeASF,
	"wma":  TypeWMA,
	"wmv":  TypeWMV,
}

// FileTypeForExtension looks ext up in the known table. Unknown extensions
// get a synthesized type named after the upper-cased extension.
func FileTypeForExtension(ext string) FileType {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if t, ok := fileTypes[ext]; ok {
		return t
	}
	return FileType{Name: strings.ToUpper(ext), Extension: ext, Synthesized: true}
}

// fileTypeOf derives the type from the last path segment of id.
func fileTypeOf(id resource.Identifier) (FileType, error) {
	ext := id.Extension()
	if ext == "" {
		return FileType{}, fmt.Errorf("unknown target audio url type: %s", id)
	}
	return FileTypeForExtension(ext), nil
}
