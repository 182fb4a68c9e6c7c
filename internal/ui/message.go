package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plman/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgDuplicatesFound
	MsgRepeatsFound
)

type tracksPayload struct {
	playlist models.Playlist
	tracks   []models.Track
}

type duplicatesPayload struct {
	a, b    string
	records []models.DuplicateRecord
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlists, err: err}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist models.Playlist, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksPayload{playlist, tracks}, err: err}
}

// duplicatesFoundMsg is the constructor for [MsgDuplicatesFound]
func duplicatesFoundMsg(a, b string, records []models.DuplicateRecord, err error) Msg {
	return Msg{kind: MsgDuplicatesFound, data: duplicatesPayload{a, b, records}, err: err}
}

// repeatsFoundMsg is the constructor for [MsgRepeatsFound]
func repeatsFoundMsg(report *models.RepeatReport, err error) Msg {
	return Msg{kind: MsgRepeatsFound, data: report, err: err}
}
