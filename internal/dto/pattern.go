package dto

// PatternQuery filters learned pattern listings.
type PatternQuery struct {
	Type     string `form:"type" json:"type"`
	EntityID string `form:"entityId" json:"entityId"`
}
