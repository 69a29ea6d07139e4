// SPDX-License-Identifier: EPL-2.0

package audio

// MapChannels converts interleaved frames from srcCh channels to dstCh
// channels and returns the number of frames written. dst must hold at least
// frames*dstCh values where frames = len(src)/srcCh.
//
//   - equal counts are copied as is
//   - mono is duplicated to every output channel
//   - multi-channel to mono is averaged
//   - otherwise the first channels are copied and extra outputs are silent
func MapChannels(dst []float32, dstCh int, src []float32, srcCh int) int {
	frames := min(len(src)/srcCh, len(dst)/dstCh)

	switch {
	case srcCh == dstCh:
		copy(dst[:frames*dstCh], src)

	case srcCh == 1:
		for f := range frames {
			v := src[f]
			base := f * dstCh
			for c := range dstCh {
				dst[base+c] = v
			}
		}

	case dstCh == 1:
		downmix(dst, src, srcCh, frames)

	default:
		shared := min(srcCh, dstCh)
		for f := range frames {
			in := src[f*srcCh:]
			out := dst[f*dstCh:]
			for c := range dstCh {
				if c < shared {
					out[c] = in[c]
				} else {
					out[c] = 0
				}
			}
		}
	}

	return frames
}

func downmix(dst, src []float32, channels, frames int) {
	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1 // f * 2
			dst[f] = (src[idx] + src[idx+1]) * 0.5
		}
	case 4: // Quad
		for f := range frames {
			idx := f << 2 // f * 4
			sum := src[idx] + src[idx+1] + src[idx+2] + src[idx+3]
			dst[f] = sum * 0.25
		}
	default: // Generic path
		for f := range frames {
			sum := float32(0)
			baseIdx := f * channels
			for c := range channels {
				sum += src[baseIdx+c]
			}
			dst[f] = sum * invChannels
		}
	}
}
