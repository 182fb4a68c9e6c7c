// Package ui implements a read-only interactive playlist browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [PlaylistListView] : Browse the playlists owned by the user
//  2. [TrackListView] : Every track of the selected playlist, across all pages
//  3. [ReportView] : Duplicates between a marked playlist and the selected one, or repeats within one playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// API calls run as [tea.Cmd] functions against a [Browser], normally the playlist manager.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, m, c, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
