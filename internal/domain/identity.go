package domain

// Identity is the provider-managed authenticated principal. It is owned by
// the external identity provider; this process only observes it.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}
