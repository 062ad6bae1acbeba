package config

// Tuning holds channel buffers and rate limits for the WebSocket hub.
type Tuning struct {
	BroadcastBuffer      int
	ClientSendBuffer     int
	MaxMessagesPerSecond int
	MaxClients           int
}

// DefaultTuning returns sensible defaults for production.
func DefaultTuning() Tuning {
	return Tuning{
		BroadcastBuffer:      256,
		ClientSendBuffer:     64,
		MaxMessagesPerSecond: 10, // Per client
		MaxClients:           200,
	}
}

// LowResourceTuning returns minimal settings for development.
func LowResourceTuning() Tuning {
	return Tuning{
		BroadcastBuffer:      16,
		ClientSendBuffer:     8,
		MaxMessagesPerSecond: 5,
		MaxClients:           20,
	}
}

// StressTestTuning returns aggressive settings for load testing.
func StressTestTuning() Tuning {
	return Tuning{
		BroadcastBuffer:      1024,
		ClientSendBuffer:     128,
		MaxMessagesPerSecond: 500,
		MaxClients:           2000,
	}
}

// Profiles maps HERO_PROFILE values to tunings.
var Profiles = map[string]Tuning{
	"default": DefaultTuning(),
	"low":     LowResourceTuning(),
	"stress":  StressTestTuning(),
}
