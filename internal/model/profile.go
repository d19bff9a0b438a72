package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Social holds a profile's social network links.
type Social struct {
	YouTube   string `json:"youtube,omitempty" gorm:"column:youtube;size:512"`
	Twitter   string `json:"twitter,omitempty" gorm:"column:twitter;size:512"`
	Facebook  string `json:"facebook,omitempty" gorm:"column:facebook;size:512"`
	LinkedIn  string `json:"linkedin,omitempty" gorm:"column:linkedin;size:512"`
	Instagram string `json:"instagram,omitempty" gorm:"column:instagram;size:512"`
}

// Profile is the per-user extended record. There is at most one per user.
type Profile struct {
	ID             uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	UserID         uuid.UUID `json:"-" gorm:"type:char(36);uniqueIndex;not null"`
	User           *User     `json:"-" gorm:"foreignKey:UserID"`
	Company        string    `json:"company,omitempty" gorm:"size:255"`
	Website        string    `json:"website,omitempty" gorm:"size:255"`
	Location       string    `json:"location,omitempty" gorm:"size:255"`
	Bio            string    `json:"bio,omitempty" gorm:"type:text"`
	Status         string    `json:"status" gorm:"size:255;not null"`
	GitHubUsername string    `json:"githubusername,omitempty" gorm:"column:github_username;size:255"`
	Skills         []string  `json:"skills" gorm:"serializer:json;type:text"`
	Social         Social    `json:"social" gorm:"embedded;embeddedPrefix:social_"`
	CreatedAt      time.Time `json:"date"`
	UpdatedAt      time.Time `json:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type profileJSON Profile

// MarshalJSON renders "user" as the joined summary when the user was loaded,
// and as the bare user id otherwise.
func (p Profile) MarshalJSON() ([]byte, error) {
	var user interface{} = p.UserID
	if p.User != nil {
		user = p.User.Summary()
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(struct {
		profileJSON
		User   interface{} `json:"user"`
		Skills []string    `json:"skills"`
	}{profileJSON(p), user, skills})
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var aux struct {
		*profileJSON
		User json.RawMessage `json:"user"`
	}
	aux.profileJSON = (*profileJSON)(p)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.User)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &p.UserID); err != nil {
			return fmt.Errorf("decode profile user id: %w", err)
		}
	default:
		var summary UserSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			return fmt.Errorf("decode profile user: %w", err)
		}
		p.UserID = summary.ID
		p.User = &User{ID: summary.ID, Name: summary.Name, Avatar: summary.Avatar}
	}
	return nil
}

// ProfileUpdate is a partial profile. Nil fields are left untouched by Apply.
type ProfileUpdate struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GitHubUsername *string
	Skills         []string
	// Social replaces the stored links as a whole, so links missing here are cleared.
	Social Social
}

// Apply merges u into p.
func (u ProfileUpdate) Apply(p *Profile) {
	setString(&p.Company, u.Company)
	setString(&p.Website, u.Website)
	setString(&p.Location, u.Location)
	setString(&p.Bio, u.Bio)
	setString(&p.Status, u.Status)
	setString(&p.GitHubUsername, u.GitHubUsername)
	if u.Skills != nil {
		p.Skills = append([]string(nil), u.Skills...)
	}
	p.Social = u.Social
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// OptionalString returns nil for an empty string.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ParseSkills splits a comma separated skill list, trimming each entry and
// keeping input order. Empty entries are dropped.
func ParseSkills(csv string) []string {
	parts := strings.Split(csv, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
