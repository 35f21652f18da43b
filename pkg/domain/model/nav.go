package model

// NavItem is one entry of the top navigation bar.
type NavItem struct {
	Name   string
	Href   string
	Active bool
}

// Navigation returns the top bar entries with the one whose href equals
// currentPath marked active. Nested paths such as /logs/42 match nothing.
func Navigation(currentPath string) []NavItem {
	items := []NavItem{
		{Name: "Logs", Href: "/logs"},
		{Name: "Create", Href: "/create"},
		{Name: "Reports", Href: "/reports"},
		{Name: "Settings", Href: "/settings"},
	}
	for i := range items {
		items[i].Active = items[i].Href == currentPath
	}
	return items
}
