package core

type AudioEncodingFormat int

const (
	PCM  AudioEncodingFormat = iota // Pulse-code modulation, 16-bit little-endian.
	ULAW                            // μ-law encoding, 8 kHz telephony.
	MP3                             // MPEG-1 Audio Layer III, as delivered by the TTS service.
	WAV                             // RIFF/WAVE container around 16-bit PCM.
)

func (f AudioEncodingFormat) String() string {
	switch f {
	case PCM:
		return "pcm"
	case ULAW:
		return "ulaw"
	case MP3:
		return "mp3"
	case WAV:
		return "wav"
	}
	return "unknown"
}
