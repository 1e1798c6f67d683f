// ABOUTME: News browsing screen with search box and category picker
// ABOUTME: Renders the article list and emits search and open requests

package newslist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// SearchMsg asks the app to run a news search
type SearchMsg struct {
	Query    string
	Category string
	// Force bypasses the response cache, e.g. an explicit refresh
	Force bool
}

// OpenMsg asks the app to show the article detail screen
type OpenMsg struct {
	Article client.Article
}

// SetupMsg asks the app to open MFA settings
type SetupMsg struct{}

// LogoutMsg asks the app to log out
type LogoutMsg struct{}

// Model is the news browsing screen
type Model struct {
	search    textinput.Model
	spin      spinner.Model
	articles  []client.Article
	cursor    int
	category  string
	query     string // last active search, empty means category default
	searching bool   // search box focused
	loading   bool
	errMsg    string
	width     int
	height    int
}

// New creates the news screen on the general category
func New() *Model {
	search := textinput.New()
	search.Placeholder = "search news"
	search.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		search:   search,
		spin:     spin,
		category: "general",
	}
}

// SetSize updates the drawable area
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Category returns the active category
func (m *Model) Category() string {
	return m.category
}

// Searching reports whether the search input currently has focus
func (m *Model) Searching() bool {
	return m.searching
}

// ActiveQuery returns the effective search term for the current state
func (m *Model) ActiveQuery() string {
	if m.query != "" {
		return m.query
	}
	return client.CategoryQuery(m.category)
}

// StartLoading marks a fetch in flight and spins the spinner
func (m *Model) StartLoading() tea.Cmd {
	m.loading = true
	m.errMsg = ""
	return m.spin.Tick
}

// SetArticles installs fetched articles
func (m *Model) SetArticles(articles []client.Article) {
	m.loading = false
	m.articles = articles
	m.cursor = 0
	m.errMsg = ""
}

// SetError surfaces a fetch failure; the previous list is kept
func (m *Model) SetError(msg string) {
	m.loading = false
	m.errMsg = msg
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		return m, m.searchCmd(false)
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}
		return m, nil
	case "enter", "o":
		if m.cursor < len(m.articles) {
			article := m.articles[m.cursor]
			return m, func() tea.Msg { return OpenMsg{Article: article} }
		}
		return m, nil
	case "c":
		m.cycleCategory()
		return m, m.searchCmd(false)
	case "r":
		return m, m.searchCmd(true)
	case "s":
		return m, func() tea.Msg { return SetupMsg{} }
	case "ctrl+l":
		return m, func() tea.Msg { return LogoutMsg{} }
	}
	return m, nil
}

// cycleCategory advances to the next category and drops the typed query,
// so the category's default search takes over
func (m *Model) cycleCategory() {
	for i, cat := range client.Categories {
		if cat == m.category {
			m.category = client.Categories[(i+1)%len(client.Categories)]
			m.query = ""
			m.search.SetValue("")
			return
		}
	}
	m.category = client.Categories[0]
}

func (m *Model) searchCmd(force bool) tea.Cmd {
	query := m.ActiveQuery()
	category := m.category
	return func() tea.Msg {
		return SearchMsg{Query: query, Category: category, Force: force}
	}
}

// visibleRows returns how many articles fit in the current height
func (m *Model) visibleRows() int {
	// Title, search row, category row, status row, help: ~8 lines of chrome,
	// two lines per article
	rows := (m.height - 8) / 2
	if rows < 3 {
		rows = 3
	}
	return rows
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.App.String() + " News"))
	sb.WriteString("\n")

	sb.WriteString(styles.Label.Render(icons.Search.String()+" ") + m.search.View() + "\n")
	sb.WriteString(styles.Label.Render("Category: ") + styles.ValueStyle.Render(m.category) + "\n\n")

	switch {
	case m.loading:
		sb.WriteString(m.spin.View() + " Loading articles...\n")
	case m.errMsg != "":
		sb.WriteString(styles.StatusCritical.Render(m.errMsg) + "\n")
	case len(m.articles) == 0:
		sb.WriteString(styles.Subtitle.Render("No articles. Try another search.") + "\n")
	default:
		sb.WriteString(m.renderList())
	}

	sb.WriteString("\n" + styles.Help.Render(
		"/ Search  c Category  enter Open  r Refresh  s MFA settings  ctrl+l Logout  q Quit"))

	return sb.String()
}

func (m *Model) renderList() string {
	rows := m.visibleRows()

	// Keep the cursor in view
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.articles) {
		end = len(m.articles)
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		a := m.articles[i]
		title := a.Title
		if title == "" {
			title = a.URL
		}
		meta := a.Source.Name
		if a.PublishedAt != "" {
			meta += "  " + a.PublishedAt
		}

		if i == m.cursor {
			sb.WriteString(styles.SelectedArticle.Render("▸ "+title) + "\n")
		} else {
			sb.WriteString(styles.ArticleTitle.Render("  "+title) + "\n")
		}
		sb.WriteString(styles.ArticleMeta.Render("    "+meta) + "\n")
	}

	if len(m.articles) > rows {
		sb.WriteString(styles.Subtitle.Render(
			fmt.Sprintf("  %d/%d", m.cursor+1, len(m.articles))) + "\n")
	}
	return sb.String()
}
