package domain

import "time"

// Status is the review state of a submission. Owners never change it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Project is a submission owned by exactly one identity.
type Project struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	RepositoryURL    string    `json:"repositoryUrl,omitempty"`
	LiveURL          string    `json:"liveUrl,omitempty"`
	Technologies     []string  `json:"technologies"`
	OwnerID          string    `json:"ownerId"`
	OwnerDisplayName string    `json:"ownerDisplayName"`
	Status           Status    `json:"status"`
	TotalHours       float64   `json:"totalHours"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// OwnedBy reports whether ownerID may read or write the project.
func (p *Project) OwnedBy(ownerID string) bool {
	return p != nil && ownerID != "" && p.OwnerID == ownerID
}

// CreateInput is the owner-supplied part of a new project.
type CreateInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	RepositoryURL string   `json:"repositoryUrl"`
	LiveURL       string   `json:"liveUrl"`
	Technologies  []string `json:"technologies"`
}

// Patch carries an update. Nil fields are left unchanged; an empty URL clears it.
type Patch struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	RepositoryURL *string   `json:"repositoryUrl"`
	LiveURL       *string   `json:"liveUrl"`
	Technologies  *[]string `json:"technologies"`
}

// Apply returns a copy of p with the patch merged in.
func (pt Patch) Apply(p Project) Project {
	if pt.Title != nil {
		p.Title = *pt.Title
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.RepositoryURL != nil {
		p.RepositoryURL = *pt.RepositoryURL
	}
	if pt.LiveURL != nil {
		p.LiveURL = *pt.LiveURL
	}
	if pt.Technologies != nil {
		p.Technologies = append([]string(nil), (*pt.Technologies)...)
	}
	return p
}
