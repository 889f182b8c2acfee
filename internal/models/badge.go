package models

// Badge is a catalog entry describing an earnable distinction. The award
// criteria live with the economy engine; earned badges are never revoked.
type Badge struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Icon   string `json:"icon"`
}
