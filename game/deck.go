package game

import (
	"fmt"
	"math/rand"

	"memory-match-system/models"
)

// Card is a single board cell. ID is the stable position index assigned
// after shuffling; it never changes for the lifetime of the game.
type Card struct {
	ID      int
	Icon    string
	Flipped bool
	Matched bool
}

// iconCatalog holds the symbols pairs are drawn from. 32 icons cover the
// largest board (8x8 = 32 pairs).
var iconCatalog = []string{
	"🍎", "🍌", "🥝", "🍇", "🍉", "🍍", "🍊", "🍓",
	"🍒", "🍋", "🥭", "🥥", "🍑", "🌶️", "🥦", "🥕",
	"🥔", "🍄", "🥚", "🧀", "🍔", "🍕", "🍣", "🍩",
	"🍪", "☕", "🍺", "🎾", "⚽", "🏀", "🏈", "⚾",
}

// NewDeck builds a shuffled deck for the given board side length: gridSize²
// cards forming gridSize²/2 icon pairs, all face down. Every call produces a
// fresh random order.
func NewDeck(gridSize int) ([]Card, error) {
	if !models.ValidGridSize(gridSize) {
		return nil, fmt.Errorf("unsupported grid size %d", gridSize)
	}

	numPairs := gridSize * gridSize / 2
	if numPairs > len(iconCatalog) {
		return nil, fmt.Errorf("icon catalog has %d symbols, need %d", len(iconCatalog), numPairs)
	}

	icons := make([]string, 0, numPairs*2)
	for _, icon := range iconCatalog[:numPairs] {
		icons = append(icons, icon, icon)
	}
	rand.Shuffle(len(icons), func(i, j int) { icons[i], icons[j] = icons[j], icons[i] })

	deck := make([]Card, len(icons))
	for i, icon := range icons {
		deck[i] = Card{ID: i, Icon: icon}
	}
	return deck, nil
}
