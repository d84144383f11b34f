package main

// Project is a card in the projects section. Category drives the filter
// buttons.
type Project struct {
	Title       string
	Category    string
	Description string
	Tags        []string
	Link        string
}

// SkillGroup is one column of the skills section.
type SkillGroup struct {
	Title  string
	Skills []string
}

var (
	OwnerName = "Chandika Nawodya Senarathna"

	Tagline = "Cybersecurity Student & Brand Designer"

	AboutMe = `I study cybersecurity and design brands, and I like the places where the two meet:
	clear interfaces for complicated systems, and systems that stay trustworthy once people start using them.
	Most of my projects begin as a question about how something works and end as a tool or an identity
	someone else can use.`

	SkillGroups = []SkillGroup{
		{Title: "Security", Skills: []string{"Network analysis", "Linux hardening", "Vulnerability assessment", "CTF challenges"}},
		{Title: "Development", Skills: []string{"Go", "Python", "JavaScript", "SQL"}},
		{Title: "Design", Skills: []string{"Brand identity", "Typography", "Figma", "Illustrator"}},
	}

	Projects = []Project{
		{
			Title:       "Home Lab SOC",
			Category:    "security",
			Description: "A self-hosted security operations lab that collects logs from virtual machines and raises alerts on suspicious activity.",
			Tags:        []string{"SIEM", "Linux", "Networking"},
		},
		{
			Title:       "Phishing Awareness Kit",
			Category:    "security",
			Description: "Training material and a simulated campaign used to teach students how to spot credential-harvesting emails.",
			Tags:        []string{"Social engineering", "Training"},
		},
		{
			Title:       "Café Identity",
			Category:    "design",
			Description: "A complete brand identity for a local café: logo, colour system, menus and signage.",
			Tags:        []string{"Branding", "Print"},
		},
		{
			Title:       "Portfolio Terminal",
			Category:    "web",
			Description: "This site: a Go server with a scripted terminal, a blog and an admin panel for publishing posts and the CV.",
			Tags:        []string{"Go", "Gin", "WebSockets"},
		},
	}
)

// ProjectCategories lists the filter buttons in display order.
var ProjectCategories = []string{"all", "security", "design", "web"}

// filterProjects returns the projects in category; "all" or empty returns
// every project.
func filterProjects(category string) []Project {
	if category == "" || category == "all" {
		return Projects
	}
	var out []Project
	for _, p := range Projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
