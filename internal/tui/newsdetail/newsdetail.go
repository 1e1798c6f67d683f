// ABOUTME: Article detail screen rendered in a scrollable viewport
// ABOUTME: Shows full content for the article selected in the news list

package newsdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// BackMsg returns to the news list
type BackMsg struct{}

// Model is the article detail screen
type Model struct {
	article client.Article
	vp      viewport.Model
	ready   bool
}

// New creates the detail screen for one article
func New(article client.Article, width, height int) *Model {
	m := &Model{article: article}
	m.SetSize(width, height)
	return m
}

// ID returns the article's route identifier
func (m *Model) ID() string {
	return client.ArticleID(m.article.URL)
}

// SetSize updates the viewport dimensions
func (m *Model) SetSize(width, height int) {
	// Title and help rows surround the viewport
	vpHeight := height - 6
	if vpHeight < 5 {
		vpHeight = 5
	}
	if width < 20 {
		width = 20
	}

	if !m.ready {
		m.vp = viewport.New(width, vpHeight)
		m.vp.SetContent(m.renderBody(width))
		m.ready = true
		return
	}
	m.vp.Width = width
	m.vp.Height = vpHeight
	m.vp.SetContent(m.renderBody(width))
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "b":
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) renderBody(width int) string {
	var sb strings.Builder

	meta := m.article.Source.Name
	if m.article.Author != "" {
		meta += "  by " + m.article.Author
	}
	if m.article.PublishedAt != "" {
		meta += "  " + m.article.PublishedAt
	}
	sb.WriteString(styles.ArticleMeta.Render(meta) + "\n\n")

	if m.article.Description != "" {
		sb.WriteString(styles.ValueStyle.Render(wrap(m.article.Description, width)) + "\n\n")
	}
	if m.article.Content != "" {
		sb.WriteString(wrap(m.article.Content, width) + "\n\n")
	}
	sb.WriteString(styles.Link.Render(m.article.URL) + "\n")

	return sb.String()
}

// wrap breaks text into lines no wider than width
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var sb strings.Builder
	line := 0
	for _, word := range strings.Fields(text) {
		if line > 0 && line+len(word)+1 > width {
			sb.WriteString("\n")
			line = 0
		} else if line > 0 {
			sb.WriteString(" ")
			line++
		}
		sb.WriteString(word)
		line += len(word)
	}
	return sb.String()
}

// View implements tea.Model
func (m *Model) View() string {
	title := m.article.Title
	if title == "" {
		title = m.article.URL
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Article.String() + " " + title))
	sb.WriteString("\n")
	sb.WriteString(m.vp.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render(fmt.Sprintf("%s/%s Scroll  b Back  q Quit", "↑", "↓")))
	return sb.String()
}
