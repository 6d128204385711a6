package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zaf/g711"
)

// PCMToULaw converts 16-bit little-endian LPCM to μ-law. Telephony clients
// expect 8 kHz input; resample first with ResamplePCM16.
func PCMToULaw(pcm []byte) []byte {
	return g711.EncodeUlaw(pcm)
}

// ULawToPCM converts μ-law samples back to 16-bit little-endian LPCM.
func ULawToPCM(ulaw []byte) []byte {
	return g711.DecodeUlaw(ulaw)
}

// ResamplePCM16 converts mono 16-bit little-endian LPCM between sample
// rates using linear interpolation. Good enough for speech payloads headed
// to a μ-law telephony leg.
func ResamplePCM16(pcm []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", fromRate, toRate)
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm payload has odd length %d", len(pcm))
	}
	if fromRate == toRate {
		out := make([]byte, len(pcm))
		copy(out, pcm)
		return out, nil
	}

	inSamples := len(pcm) / 2
	if inSamples == 0 {
		return []byte{}, nil
	}
	outSamples := inSamples * toRate / fromRate
	out := make([]byte, outSamples*2)

	ratio := float64(fromRate) / float64(toRate)
	for i := 0; i < outSamples; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		s0 := int16(binary.LittleEndian.Uint16(pcm[idx*2:]))
		s1 := s0
		if idx+1 < inSamples {
			s1 = int16(binary.LittleEndian.Uint16(pcm[(idx+1)*2:]))
		}
		sample := int16(float64(s0) + frac*float64(s1-s0))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	return out, nil
}

// WrapPCMInWAV frames raw 16-bit LPCM in a RIFF/WAVE container so browsers
// and audio elements can play it directly.
func WrapPCMInWAV(pcm []byte, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
