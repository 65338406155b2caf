// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats/aiff"
	"github.com/ik5/audstream/formats/flac"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/formats/vorbis"
	"github.com/ik5/audstream/formats/wav"
)

// DefaultRegistry returns a registry with every built-in format. MP3 goes
// last because a bare frame sync is the weakest signature.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(wav.Format)
	r.Register(aiff.Format)
	r.Register(flac.Format)
	r.Register(vorbis.Format)
	r.Register(mp3.Format)
	return r
}
