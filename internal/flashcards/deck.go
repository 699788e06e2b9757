// Package flashcards holds the browsing state for one generated deck:
// which card is showing and whether it is flipped to its back. Movement
// is bounds-checked; flipping never carries over to the next card.
package flashcards

import "edugen-client/internal/dto"

type Deck struct {
	cards   []dto.Flashcard
	index   int
	flipped bool
}

func NewDeck(cards []dto.Flashcard) *Deck {
	return &Deck{cards: cards}
}

func (d *Deck) Cards() []dto.Flashcard { return d.cards }
func (d *Deck) Len() int               { return len(d.cards) }
func (d *Deck) Index() int             { return d.index }
func (d *Deck) Flipped() bool          { return d.flipped }

// Current returns the card being shown, false on an empty deck.
func (d *Deck) Current() (dto.Flashcard, bool) {
	if len(d.cards) == 0 {
		return dto.Flashcard{}, false
	}
	return d.cards[d.index], true
}

// Flip toggles between the card's front and back.
func (d *Deck) Flip() {
	if len(d.cards) == 0 {
		return
	}
	d.flipped = !d.flipped
}

// Next advances to the following card, front side up. Returns false at
// the end of the deck.
func (d *Deck) Next() bool {
	if d.index >= len(d.cards)-1 {
		return false
	}
	d.index++
	d.flipped = false
	return true
}

// Prev moves back one card, front side up. Returns false at the start.
func (d *Deck) Prev() bool {
	if d.index <= 0 {
		return false
	}
	d.index--
	d.flipped = false
	return true
}
