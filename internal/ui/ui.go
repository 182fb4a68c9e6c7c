package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plman/internal/formatter"
	"github.com/desertthunder/plman/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ReportView
)

// Browser is the read-only subset of the playlist manager the TUI needs.
type Browser interface {
	ListOwnedPlaylists(ctx context.Context) ([]models.Playlist, error)
	ListPlaylistTracks(ctx context.Context, name string) ([]models.Track, error)
	FindDuplicates(ctx context.Context, nameA, nameB string) ([]models.DuplicateRecord, error)
	FindRepeats(ctx context.Context, name string) (*models.RepeatReport, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	browser      Browser
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	trackList    list.Model
	marked       *models.Playlist
	reportTitle  string
	report       string
	loading      string
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model browsing through b.
func NewModel(ctx context.Context, b Browser) *Model {
	playlistList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlistList.Title = "Spotify Playlists"
	trackList := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	// quit and back are handled by the model so esc never exits the program
	playlistList.KeyMap.Quit.SetEnabled(false)
	trackList.KeyMap.Quit.SetEnabled(false)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		browser:      b,
		playlistList: playlistList,
		trackList:    trackList,
		loading:      "Loading playlists...",
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init initializes the TUI by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-6)
		m.trackList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.loading = ""

	switch msg.kind {
	case MsgPlaylistsFetched:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.data.([]models.Playlist)
		m.refreshPlaylistItems()
		return m, nil

	case MsgTracksFetched:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		payload := msg.data.(tracksPayload)
		m.trackList.SetItems(trackItems(payload.tracks))
		m.trackList.Title = fmt.Sprintf("Tracks in '%s' (%d)", payload.playlist.Name, len(payload.tracks))
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, nil

	case MsgDuplicatesFound:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		payload := msg.data.(duplicatesPayload)
		data, err := formatter.RenderDuplicates(formatter.Text, payload.a, payload.b, payload.records)
		return m.showReport(fmt.Sprintf("Duplicates: %s / %s", payload.a, payload.b), data, err)

	case MsgRepeatsFound:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		report := msg.data.(*models.RepeatReport)
		data, err := formatter.RenderRepeats(formatter.Text, report)
		return m.showReport("Repeats: "+report.PlaylistName, data, err)
	}
	return m, nil
}

func (m *Model) showReport(title string, data []byte, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.reportTitle = title
	m.report = string(data)
	m.view = ReportView
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case PlaylistListView:
		body = m.renderPlaylistList()
	case TrackListView:
		body = m.renderTrackList()
	case ReportView:
		body = m.renderReport()
	}

	if m.loading != "" {
		body += "\n" + styles.warn.Render(m.loading)
	}
	if m.status != "" {
		body += "\n" + styles.err.Render(m.status)
	}
	return body
}

func (m *Model) selectedPlaylist() (models.Playlist, bool) {
	if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
		return item.playlist, true
	}
	return models.Playlist{}, false
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.enter):
		if p, ok := m.selectedPlaylist(); ok {
			m.status = ""
			m.loading = fmt.Sprintf("Loading tracks of '%s'...", p.Name)
			return m, m.fetchTracks(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.mark):
		if p, ok := m.selectedPlaylist(); ok {
			if m.marked != nil && m.marked.ID == p.ID {
				m.marked = nil
			} else {
				m.marked = &p
			}
			m.refreshPlaylistItems()
		}
		return m, nil

	case key.Matches(msg, m.keys.compare):
		p, ok := m.selectedPlaylist()
		if !ok {
			return m, nil
		}
		if m.marked == nil {
			m.status = "mark a playlist with m first"
			return m, nil
		}
		m.status = ""
		m.loading = fmt.Sprintf("Comparing '%s' with '%s'...", m.marked.Name, p.Name)
		return m, m.findDuplicates(m.marked.Name, p.Name)

	case key.Matches(msg, m.keys.repeats):
		if p, ok := m.selectedPlaylist(); ok {
			m.status = ""
			m.loading = fmt.Sprintf("Looking for repeats in '%s'...", p.Name)
			return m, m.findRepeats(p.Name)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.report = ""
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshPlaylistItems() {
	marked := ""
	if m.marked != nil {
		marked = m.marked.ID
	}
	m.playlistList.SetItems(playlistItems(m.playlists, marked))
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.browser.ListOwnedPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchTracks(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.browser.ListPlaylistTracks(m.ctx, p.Name)
		return tracksFetchedMsg(p, tracks, err)
	}
}

func (m *Model) findDuplicates(a, b string) tea.Cmd {
	return func() tea.Msg {
		records, err := m.browser.FindDuplicates(m.ctx, a, b)
		return duplicatesFoundMsg(a, b, records, err)
	}
}

func (m *Model) findRepeats(name string) tea.Cmd {
	return func() tea.Msg {
		report, err := m.browser.FindRepeats(m.ctx, name)
		return repeatsFoundMsg(report, err)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.mark, m.keys.repeats, m.keys.quit}
	if m.marked != nil {
		helpKeys = []key.Binding{m.keys.enter, m.keys.compare, m.keys.mark, m.keys.repeats, m.keys.quit}
	}
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderReport() string {
	title := styles.title.Render(m.reportTitle)
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, m.report, m.help.ShortHelpView(helpKeys))
}
