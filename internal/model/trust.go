package model

// TrustLevel is the fixed-threshold bucket for a trust score.
type TrustLevel string

const (
	LevelHighlyTrusted TrustLevel = "Highly Trusted"
	LevelTrusted       TrustLevel = "Trusted"
	LevelSomeTrust     TrustLevel = "Some Trust"
	LevelLimitedData   TrustLevel = "Limited Data"
)

// TrustBreakdown is the social-distance decomposition of the
// endorsements backing a content item, relative to one viewer.
// Invariant: TotalEndorsements == DirectFriends + FriendsOfFriends.
type TrustBreakdown struct {
	DirectFriends     int    `json:"directFriendsCount"`
	FriendsOfFriends  int    `json:"friendsOfFriendsCount"`
	TotalEndorsements int    `json:"totalEndorsements"`
	SocialHops        string `json:"socialHops"`
}

// TrustResponse is the API response for a trust score lookup.
type TrustResponse struct {
	ItemID    string         `json:"itemId"`
	Score     float64        `json:"score"`
	Level     TrustLevel     `json:"level"`
	Breakdown TrustBreakdown `json:"breakdown"`
}
