package deepgram

import "github.com/koscakluka/ema-walkthrough/core/speechtotext"

type callbackConfig struct {
	interimTranscriptionCallback func(string)
	partialTranscriptionCallback func(string)
	transcriptionCallback        func(string)
	startSpeechCallback          func()
	endSpeechCallback            func()
	errorCallback                func(error)
}

type websocketConfig struct {
	shouldDetectSpeechStart            bool
	shouldEnhanceSpeechEndingDetection bool
	shouldRequestInterimResults        bool
}

// newCallbackConfig fills unset callbacks with no-ops and works out which
// optional Deepgram features the callbacks need.
func newCallbackConfig(options speechtotext.TranscriptionOptions) (callbackConfig, websocketConfig) {
	callbacks := callbackConfig{
		interimTranscriptionCallback: func(string) {},
		partialTranscriptionCallback: func(string) {},
		transcriptionCallback:        func(string) {},
		startSpeechCallback:          func() {},
		endSpeechCallback:            func() {},
		errorCallback:                func(error) {},
	}
	wsConfig := websocketConfig{}

	if options.InterimTranscriptionCallback != nil {
		callbacks.interimTranscriptionCallback = options.InterimTranscriptionCallback
		wsConfig.shouldRequestInterimResults = true
	}
	if options.PartialTranscriptionCallback != nil {
		callbacks.partialTranscriptionCallback = options.PartialTranscriptionCallback
	}
	if options.TranscriptionCallback != nil {
		callbacks.transcriptionCallback = options.TranscriptionCallback
		wsConfig.shouldEnhanceSpeechEndingDetection = true
	}
	if options.SpeechStartedCallback != nil {
		callbacks.startSpeechCallback = options.SpeechStartedCallback
		wsConfig.shouldDetectSpeechStart = true
	}
	if options.SpeechEndedCallback != nil {
		callbacks.endSpeechCallback = options.SpeechEndedCallback
		wsConfig.shouldEnhanceSpeechEndingDetection = true
	}
	if options.ErrorCallback != nil {
		callbacks.errorCallback = options.ErrorCallback
		// no-speech detection relies on utterance end events
		wsConfig.shouldEnhanceSpeechEndingDetection = true
	}

	return callbacks, wsConfig
}
