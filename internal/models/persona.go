package models

import "errors"

// Persona describes one narrator the pipeline can impersonate.
// The catalog is loaded from a JSON file by the config package.
type Persona struct {
	ID           string `json:"id"`             // Stable identifier used in requests
	Name         string `json:"name"`           // Display name matched against mentions
	StylePrompt  string `json:"style_prompt"`   // Writing-style instructions for the script stage
	TTSVoiceLink string `json:"tts_voice_link"` // Voice reference for the speech stage
	BaseVideo    string `json:"base_video"`     // Local path of the base video used for lip-sync
}

// Validate checks that the persona carries the fields every stage needs.
func (p Persona) Validate() error {
	if p.ID == "" {
		return errors.New("persona id is required")
	}
	if p.Name == "" {
		return errors.New("persona name is required")
	}
	if p.StylePrompt == "" {
		return errors.New("persona style_prompt is required")
	}
	if p.TTSVoiceLink == "" {
		return errors.New("persona tts_voice_link is required")
	}
	if p.BaseVideo == "" {
		return errors.New("persona base_video is required")
	}
	return nil
}

// TranscriptSegment is one timed span of the narration transcript, as
// returned by the speech stage.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the timed transcription of the synthesized narration.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
}

// SpeechResult is the output contract of the speech stage: the synthesized
// audio plus its transcript. Both fields are required; the orchestrator
// rejects a result missing either.
type SpeechResult struct {
	AudioPath  string     // Local path of the synthesized narration audio
	Transcript Transcript // Timed transcript of that audio
}
