// Package quotes provides the reaction-line catalog: per-score quote lists
// and one-line messages, with bundled defaults underneath user overrides.
package quotes

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/book-expert/logger"
)

// FallbackQuote is used when no line is configured for a score.
const FallbackQuote = "Well, that happened."

// defaultQuotes are the bundled per-score reaction lines. User files only
// override the scores they mention; everything else falls back here.
var defaultQuotes = map[string][]string{
	"1":  {"Well, that was... educational.", "Physics called, they want an explanation."},
	"2":  {"Hard arrival. Teeth still rattling."},
	"3":  {"Firm. The landing gear filed a complaint."},
	"4":  {"Not bad, not smooth. We felt it."},
	"5":  {"Acceptable. Coffee only trembled."},
	"6":  {"Decent touch. Cabin crew kept pouring."},
	"7":  {"Nice! Most passengers missed it."},
	"8":  {"Smooth operator. Butter adjacent."},
	"9":  {"Greased it. Polite applause engaged."},
	"10": {"Absolute butter.", "Chief pilot approved!"},
}

var defaultMessages = map[string]string{
	"1":  "Mayday? That was… educational.",
	"2":  "Hard arrival. Teeth still rattling.",
	"3":  "Firm. The landing gear filed a complaint.",
	"4":  "Not bad, not smooth. We felt it.",
	"5":  "Acceptable. Coffee only trembled.",
	"6":  "Decent touch. Cabin crew kept pouring.",
	"7":  "Nice! Most passengers missed it.",
	"8":  "Smooth operator. Butter adjacent.",
	"9":  "Greased it. Polite applause engaged.",
	"10": "Absolute butter. Chief pilot approved!",
}

// catalogFile is the on-disk shape of the user quotes file.
type catalogFile struct {
	Quotes   map[string][]string `json:"quotes"`
	Messages map[string]string   `json:"messages"`
}

// Catalog serves reaction lines for scores. The user file is re-read on each
// pick so edits apply without a restart; a missing or corrupt file means
// defaults only.
type Catalog struct {
	path string
	log  *logger.Logger
}

// NewCatalog creates a Catalog over the given quotes file path. The path may
// point at a file that does not exist yet.
func NewCatalog(path string, log *logger.Logger) *Catalog {
	return &Catalog{
		path: path,
		log:  log,
	}
}

// RandomQuote picks a reaction line for the score uniformly at random,
// falling back to FallbackQuote when none are configured.
func (c *Catalog) RandomQuote(score int) string {
	lines := c.mergedQuotes()[strconv.Itoa(score)]
	if len(lines) == 0 {
		return FallbackQuote
	}

	return lines[rand.IntN(len(lines))]
}

// Message returns the fixed one-line message for the score, or "" for a
// score with no message configured.
func (c *Catalog) Message(score int) string {
	merged := make(map[string]string, len(defaultMessages))
	for k, v := range defaultMessages {
		merged[k] = v
	}

	user := c.readUserFile()
	for k, v := range user.Messages {
		merged[k] = v
	}

	return merged[strconv.Itoa(score)]
}

func (c *Catalog) mergedQuotes() map[string][]string {
	merged := make(map[string][]string, len(defaultQuotes))
	for k, v := range defaultQuotes {
		merged[k] = v
	}

	user := c.readUserFile()
	for k, v := range user.Quotes {
		if len(v) > 0 {
			merged[k] = v
		}
	}

	return merged
}

// readUserFile loads the user overrides, degrading to empty on any failure.
func (c *Catalog) readUserFile() catalogFile {
	var parsed catalogFile

	data, err := os.ReadFile(c.path)
	if err != nil {
		return parsed
	}

	err = json.Unmarshal(data, &parsed)
	if err != nil {
		c.log.Warn("Failed to parse quotes file '%s', using defaults: %v", c.path, err)

		return catalogFile{Quotes: nil, Messages: nil}
	}

	return parsed
}
