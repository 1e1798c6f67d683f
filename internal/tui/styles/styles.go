// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines colors, borders, and text styles used across screens

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent    = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Info      = lipgloss.Color("#3B82F6") // Blue - informational

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Form elements
	Label = lipgloss.NewStyle().
		Foreground(Muted)

	FocusedLabel = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	FieldError = lipgloss.NewStyle().
			Foreground(Danger)

	// Links between screens (register, forgot password)
	Link = lipgloss.NewStyle().
		Foreground(Info).
		Underline(true)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Article list styles
	ArticleTitle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	ArticleMeta = lipgloss.NewStyle().
			Foreground(Muted)

	SelectedArticle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Transient notification levels
	ToastInfo = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	ToastSuccess = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	ToastError = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)
)
