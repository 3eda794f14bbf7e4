// Package rtc translates configured ICE servers into the WebRTC vocabulary
// the clients' peer-negotiation layer expects. The server never negotiates
// media itself.
package rtc

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/config"
	"github.com/pion/webrtc/v4"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// ConfigFrom builds the client-facing configuration. An empty list falls back
// to DefaultWebRTCConfig.
func ConfigFrom(servers []config.ICEServer) webrtc.Configuration {
	if len(servers) == 0 {
		return DefaultWebRTCConfig()
	}
	out := webrtc.Configuration{ICEServers: make([]webrtc.ICEServer, 0, len(servers))}
	for _, s := range servers {
		if len(s.URLs) == 0 {
			continue
		}
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" || s.Credential != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
		}
		out.ICEServers = append(out.ICEServers, srv)
	}
	if len(out.ICEServers) == 0 {
		return DefaultWebRTCConfig()
	}
	return out
}

// ClientICEServer mirrors RTCIceServer as browsers consume it.
type ClientICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

func ClientServers(cfg webrtc.Configuration) []ClientICEServer {
	out := make([]ClientICEServer, 0, len(cfg.ICEServers))
	for _, s := range cfg.ICEServers {
		cs := ClientICEServer{URLs: s.URLs, Username: s.Username}
		if s.Username != "" {
			cs.Credential = fmt.Sprint(s.Credential)
		}
		out = append(out, cs)
	}
	return out
}
