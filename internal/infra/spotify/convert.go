package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/track"
)

func convertArtist(a *spotify.FullArtist) artist.Artist {
	return artist.Artist{
		ID:       string(a.ID),
		Name:     a.Name,
		ImageURL: firstImage(a.Images),
	}
}

func convertSimpleTrack(t *spotify.SimpleTrack) track.Track {
	return track.Track{
		URI:     string(t.URI),
		Name:    t.Name,
		Artists: artistNames(t.Artists),
	}
}

func convertFullTrack(t *spotify.FullTrack) track.Track {
	return track.Track{
		URI:      string(t.URI),
		Name:     t.Name,
		Artists:  artistNames(t.Artists),
		ImageURL: firstImage(t.Album.Images),
	}
}

func convertSavedTrack(t *spotify.FullTrack) catalog.SavedTrack {
	credited := make([]artist.Artist, 0, len(t.Artists))
	for _, a := range t.Artists {
		credited = append(credited, artist.Artist{ID: string(a.ID), Name: a.Name})
	}
	return catalog.SavedTrack{
		ID:      string(t.ID),
		Album:   t.Album.Name,
		Track:   convertFullTrack(t),
		Artists: credited,
	}
}

func artistNames(artists []spotify.SimpleArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

// firstImage returns the first image URL. The API orders images widest first.
func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
