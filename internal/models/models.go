package models

// Playlist represents a playlist owned by the authenticated user. Identity is ID.
type Playlist struct {
	OwnerID    string `json:"owner"`
	Name       string `json:"name"`
	ID         string `json:"id"`
	TrackCount int    `json:"total_tracks"`
}

// Track represents a single song. ID is empty for local or unavailable entries.
type Track struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Album   string `json:"album"`
	Artists string `json:"artists"` // comma-joined artist names
}

// HasID reports whether the track carries a platform identifier.
func (t Track) HasID() bool {
	return t.ID != ""
}

// DuplicateRecord is a track annotated with the name of the playlist it was found in.
type DuplicateRecord struct {
	Track
	PlaylistName string `json:"playlist_name"`
}

// TrackQuery is a track described by text, as read from an input file.
type TrackQuery struct {
	Artists string `json:"artists"`
	Album   string `json:"album"`
	Name    string `json:"name"`
}

func (q TrackQuery) String() string {
	return q.Name + " - " + q.Artists
}

// AdditionPlan is the computed difference between a list of queries and a target playlist.
type AdditionPlan struct {
	PlaylistID   string       `json:"playlist_id"`
	PlaylistName string       `json:"playlist_name"`
	Present      []TrackQuery `json:"present"`    // already in the playlist by name
	Unresolved   []TrackQuery `json:"unresolved"` // no search result matched the artist
	TrackIDs     []string     `json:"track_ids"`  // resolved, deduplicated, first-seen order
}

// AdditionResult reports what happened when a plan was applied.
type AdditionResult struct {
	Plan    *AdditionPlan `json:"plan"`
	Applied bool          `json:"applied"`
	Added   int           `json:"added"`
}

// RepeatReport lists tracks whose name occurs more than once in a playlist.
type RepeatReport struct {
	PlaylistName string  `json:"playlist_name"`
	Total        int     `json:"total"`
	Unique       int     `json:"unique"`
	Repeats      []Track `json:"repeats"`
}
