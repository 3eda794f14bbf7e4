package rtc

import (
	"testing"

	"github.com/dkeye/Huddle/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEmptyFallsBackToDefault(t *testing.T) {
	require.Equal(t, DefaultWebRTCConfig(), ConfigFrom(nil))
	require.Equal(t, DefaultWebRTCConfig(), ConfigFrom([]config.ICEServer{{}}))
}

func TestConfigFromWithCredentials(t *testing.T) {
	cfg := ConfigFrom([]config.ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478"}, Username: "u", Credential: "p"},
	})

	require.Len(t, cfg.ICEServers, 2)
	require.Empty(t, cfg.ICEServers[0].Username)
	require.Equal(t, "u", cfg.ICEServers[1].Username)

	require.Equal(t, []ClientICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478"}, Username: "u", Credential: "p"},
	}, ClientServers(cfg))
}
