package pinger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PingInfo is what a server reports in its status response.
type PingInfo struct {
	VersionName     string
	ProtocolVersion int
	MaxPlayers      int
	NumPlayers      int
	Description     string // plain text of the MOTD
	ModInfo         string // mod loader type, empty for vanilla servers
	Favicon         string // data URI
	Latency         time.Duration
}

type statusJSON struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
	ModInfo     *struct {
		Type string `json:"type"`
	} `json:"modinfo"`
	Favicon string `json:"favicon"`
}

// ParseStatus decodes the JSON sent in a StatusResponse.
func ParseStatus(raw string) (PingInfo, error) {
	var s statusJSON
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return PingInfo{}, errors.Wrap(err, "mcnet: bad status json")
	}
	info := PingInfo{
		VersionName:     s.Version.Name,
		ProtocolVersion: s.Version.Protocol,
		MaxPlayers:      s.Players.Max,
		NumPlayers:      s.Players.Online,
		Description:     PlainText(s.Description),
		Favicon:         s.Favicon,
	}
	if s.ModInfo != nil {
		info.ModInfo = s.ModInfo.Type
	}
	return info, nil
}

type chatComponent struct {
	Text  string            `json:"text"`
	Extra []json.RawMessage `json:"extra"`
}

// PlainText flattens a chat component, either a bare string or an object with text and
// extra children, into its text.
func PlainText(raw json.RawMessage) string {
	var sb strings.Builder
	appendText(&sb, raw, 0)
	return sb.String()
}

func appendText(sb *strings.Builder, raw json.RawMessage, depth int) {
	if len(raw) == 0 || depth > 32 {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		sb.WriteString(s)
		return
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		for _, part := range parts {
			appendText(sb, part, depth+1)
		}
		return
	}
	var c chatComponent
	if err := json.Unmarshal(raw, &c); err != nil {
		return
	}
	sb.WriteString(c.Text)
	for _, e := range c.Extra {
		appendText(sb, e, depth+1)
	}
}
