package organizationtype

type CreateRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	DisplayName  string `json:"displayName"`
	IconName     string `json:"iconName"`
	DisplayOrder int    `json:"displayOrder"`
}

// UpdateRequest is partial: nil fields are left untouched.
type UpdateRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	DisplayName  *string `json:"displayName"`
	IconName     *string `json:"iconName"`
	DisplayOrder *int    `json:"displayOrder"`
	Active       *bool   `json:"active"`
}

type MenuItem struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	DisplayName string `json:"displayName"`
	IconName    string `json:"iconName"`
}
