package main

import "github.com/charmbracelet/lipgloss"

// Theme is the dashboard palette. Everything renders through these six
// colors so a future config-driven palette only has to swap the struct.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme is a 256-color palette that stays readable on both dark
// and light terminals.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("39"),  // headline blue
		Secondary: lipgloss.Color("75"),  // softer blue for names
		Success:   lipgloss.Color("42"),  // healthy green
		Warning:   lipgloss.Color("214"), // attention orange
		Error:     lipgloss.Color("196"), // failure red
		Muted:     lipgloss.Color("243"), // detail gray
	}
}
