package ai

import "encoding/binary"

// Output format of the Gemini speech model: 24kHz, mono, 16-bit PCM.
const (
	wavSampleRate = 24000
	wavChannels   = 1
	wavBitDepth   = 16
)

// encodeWAV wraps raw PCM samples in a standard 44-byte RIFF header so the
// browser can play the response directly.
func encodeWAV(pcm []byte) []byte {
	blockAlign := wavChannels * wavBitDepth / 8
	byteRate := wavSampleRate * blockAlign

	out := make([]byte, 44+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(out[22:24], wavChannels)
	binary.LittleEndian.PutUint32(out[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], wavBitDepth)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}
