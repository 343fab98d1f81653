package emu

const sampleRate = 48000

// samplesPerFrame is the number of stereo sample pairs in one frame.
const samplesPerFrame = sampleRate / 60

// mixAudio fills the frame's stereo buffer. The sound board is not
// emulated, so the stream is silent; it still paces audio-driven
// frontends at the board frame rate.
func (e *Emulator) mixAudio() {
	e.audioBuffer = e.audioBuffer[:0]
	for i := 0; i < samplesPerFrame; i++ {
		e.audioBuffer = append(e.audioBuffer, 0, 0)
	}
}

// GetAudioSamples returns the stereo samples generated by the last frame.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}
