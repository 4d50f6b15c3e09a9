package types

import "time"

// NFTContract is cached collection metadata for an ERC-721 contract.
type NFTContract struct {
	ContractAddress string    `json:"contractAddress"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	Description     string    `json:"description,omitempty"`
	Image           string    `json:"image,omitempty"`
	TotalSupply     string    `json:"totalSupply,omitempty"`
	Synced          bool      `json:"synced"`
	CreatedAt       time.Time `json:"createdAt"`
}
