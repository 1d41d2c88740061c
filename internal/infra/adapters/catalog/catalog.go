package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// UncategorizedMovie groups loose video files found in the data directory
// root.
const UncategorizedMovie = "Uncategorized"

const (
	videoExt       = ".mp4"
	thumbnailExt   = ".jpg"
	movieThumbnail = "thumbnail.jpg"
)

// Episode is one playable file of a movie.
type Episode struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	DisplayName string `json:"display_name"`
}

// Movie is a directory of episodes plus an optional cover thumbnail.
type Movie struct {
	Name      string    `json:"name"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Episodes  []Episode `json:"episodes"`
}

// Library maps movie name to movie info.
type Library map[string]Movie

// Scanner builds the media library from the filesystem. Every Scan is a
// fresh walk; nothing is cached or invalidated.
type Scanner struct {
	dataDir string
}

func NewScanner(dataDir string) *Scanner {
	return &Scanner{dataDir: dataDir}
}

// Scan walks the data directory. Each subdirectory is a movie whose *.mp4
// files are episodes; loose *.mp4 files in the root are grouped under
// UncategorizedMovie. A missing data directory yields an empty library.
func (s *Scanner) Scan() (Library, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Library{}, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	library := Library{}
	var rootEpisodes []Episode

	for _, entry := range entries {
		if entry.IsDir() {
			movie, err := s.scanMovie(entry.Name())
			if err != nil {
				return nil, err
			}
			library[entry.Name()] = movie
			continue
		}

		if strings.HasSuffix(entry.Name(), videoExt) {
			rootEpisodes = append(rootEpisodes, s.episode("", entry.Name()))
		}
	}

	if len(rootEpisodes) > 0 {
		sortEpisodes(rootEpisodes)
		library[UncategorizedMovie] = Movie{
			Name:     UncategorizedMovie,
			Episodes: rootEpisodes,
		}
	}

	return library, nil
}

func (s *Scanner) scanMovie(name string) (Movie, error) {
	movieDir := filepath.Join(s.dataDir, name)

	entries, err := os.ReadDir(movieDir)
	if err != nil {
		return Movie{}, fmt.Errorf("read movie dir %q: %w", name, err)
	}

	movie := Movie{Name: name}

	if fileExists(filepath.Join(movieDir, movieThumbnail)) {
		movie.Thumbnail = path.Join("data", name, movieThumbnail)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), videoExt) {
			continue
		}
		movie.Episodes = append(movie.Episodes, s.episode(name, entry.Name()))
	}

	sortEpisodes(movie.Episodes)

	return movie, nil
}

func (s *Scanner) episode(movieName, fileName string) Episode {
	episodeName := strings.TrimSuffix(fileName, videoExt)

	ep := Episode{
		Name:        episodeName,
		File:        path.Join("data", movieName, fileName),
		DisplayName: displayName(episodeName),
	}

	thumbFile := episodeName + thumbnailExt
	if fileExists(filepath.Join(s.dataDir, movieName, thumbFile)) {
		ep.Thumbnail = path.Join("data", movieName, thumbFile)
	}

	return ep
}

// displayName makes purely numeric file names friendlier.
func displayName(episodeName string) string {
	if _, err := strconv.Atoi(episodeName); err == nil {
		return "Episode " + episodeName
	}
	return episodeName
}

var episodeNumberRe = regexp.MustCompile(`\d+`)

// episodeNumber extracts the first embedded integer of an episode name.
func episodeNumber(name string) (int, bool) {
	match := episodeNumberRe.FindString(name)
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		// Number too large for int; treat like an unnumbered name.
		return 0, false
	}

	return n, true
}

// sortEpisodes orders by the first embedded integer ascending. Names
// without a number sort last; ties break lexicographically.
func sortEpisodes(episodes []Episode) {
	slices.SortStableFunc(episodes, func(a, b Episode) int {
		an, aok := episodeNumber(a.Name)
		bn, bok := episodeNumber(b.Name)

		switch {
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		case aok && bok && an != bn:
			return an - bn
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
