// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must hold at least one frame")
	ErrUnknownFormat  = errors.New("unknown audio format")
)
