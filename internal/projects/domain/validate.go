package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
)

var (
	repositoryURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(github\.com|gitlab\.com|bitbucket\.org)/\S+$`)
	liveURLPattern       = regexp.MustCompile(`^(https?://)?(www\.)?\S+\.\S+$`)
)

// Normalize trims text fields and collapses technologies to an ordered set.
func Normalize(p *Project) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.RepositoryURL = strings.TrimSpace(p.RepositoryURL)
	p.LiveURL = strings.TrimSpace(p.LiveURL)
	p.Technologies = normalizeTechnologies(p.Technologies)
}

// Validate checks the owner-editable fields of an already normalized project.
func Validate(p *Project) error {
	switch {
	case p.Title == "":
		return invalid("title", "Title is required")
	case utf8.RuneCountInString(p.Title) > MaxTitleLen:
		return invalid("title", "Project title cannot be more than 100 characters")
	case p.Description == "":
		return invalid("description", "Description is required")
	case utf8.RuneCountInString(p.Description) > MaxDescriptionLen:
		return invalid("description", "Description cannot be more than 1000 characters")
	case len(p.Technologies) == 0:
		return invalid("technologies", "At least one technology is required")
	}

	if p.RepositoryURL != "" && !ValidRepositoryURL(p.RepositoryURL) {
		return invalid("repositoryUrl", "Please provide a valid repository URL")
	}
	if p.LiveURL != "" && !ValidLiveURL(p.LiveURL) {
		return invalid("liveUrl", "Please provide a valid URL")
	}
	return nil
}

// ValidRepositoryURL accepts GitHub, GitLab and Bitbucket repository links only.
func ValidRepositoryURL(s string) bool {
	return repositoryURLPattern.MatchString(s)
}

func ValidLiveURL(s string) bool {
	return liveURLPattern.MatchString(s)
}

func normalizeTechnologies(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
