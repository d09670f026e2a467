package models

// Site holds the metadata shared by every generated page. It is loaded from
// site.yml when present.
type Site struct {
	Name        string `yaml:"name"`
	Heading     string `yaml:"heading"`
	Description string `yaml:"description"`
	Summary     string `yaml:"summary"` // index <meta name="description">
	Author      string `yaml:"author"`
	Email       string `yaml:"email"`
	LinkedIn    string `yaml:"linkedin"`
	Year        int    `yaml:"year"`
	Icon        string `yaml:"icon"`
}

func DefaultSite() Site {
	return Site{
		Name:        "Prof Cruz",
		Heading:     "Thinking in Systems",
		Description: "Notes on strategy, governance, institutional transformation, and the architecture of learning — from 25 years at the intersection of theory and practice.",
		Summary:     "Notes on strategy, governance, transformation, and learning architecture by Richard Cruz.",
		Author:      "Richard Cruz",
		Email:       "richard@profcruz.com",
		LinkedIn:    "https://www.linkedin.com/in/richardcruz",
		Year:        2026,
		Icon:        "◈",
	}
}
