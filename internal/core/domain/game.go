package domain

import "time"

// Game is a catalog entry that a developer can claim ownership of.
// The claim flow only reads identity fields and mutates the claim columns;
// the rest of the catalog record is managed elsewhere.
type Game struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`

	// OwnerURL is the developer profile URL declared on the entry,
	// e.g. "https://provider.example/devx". The handle extracted from it
	// is matched against the authenticated identity during a claim.
	OwnerURL string `json:"owner_url"`

	// Claimed transitions false->true at most once. When true, the
	// claimed_by fields identify the winning identity.
	Claimed         bool       `json:"claimed"`
	ClaimedByID     string     `json:"claimed_by_id,omitempty"`
	ClaimedByHandle string     `json:"claimed_by_handle,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ClaimAudit is the secondary record written after a successful claim.
// It is redundant with the claim columns on the game row; writing it is
// best-effort and never changes the claim verdict.
type ClaimAudit struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	ExternalID string    `json:"external_id"`
	Handle     string    `json:"handle"`
	ClaimedAt  time.Time `json:"claimed_at"`
}
