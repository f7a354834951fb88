package models

// Connection statuses reported by the backend.
const (
	StatusConnected    = "connected"
	StatusError        = "error"
	StatusPending      = "pending"
	StatusDisconnected = "disconnected"
)

// SocialConnection is the link state of one social network for a brand.
type SocialConnection struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
	Username  string `json:"username,omitempty"`
	Followers int    `json:"followers,omitempty"`
	LastPost  string `json:"last_post,omitempty"`
}

// SocialDetails is the body of the brand social-details endpoint.
type SocialDetails struct {
	Connections []SocialConnection `json:"social_connections"`
}

// SocialSummary aggregates a brand's connections.
type SocialSummary struct {
	Connected      int
	Total          int
	TotalFollowers int
}

// Summarize counts connected platforms and sums their followers.
func Summarize(conns []SocialConnection) SocialSummary {
	s := SocialSummary{Total: len(conns)}
	for _, c := range conns {
		if !c.Connected {
			continue
		}
		s.Connected++
		s.TotalFollowers += c.Followers
	}
	return s
}
