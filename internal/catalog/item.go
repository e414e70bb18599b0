package catalog

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/costbook/internal/shared"
)

// ItemKind enumerates the goods that can be purchased and stocked.
type ItemKind string

const (
	// KindMaterial is a raw material consumed by recipes.
	KindMaterial ItemKind = "material"
	// KindPackaging is a container or wrapper.
	KindPackaging ItemKind = "packaging"
	// KindLabel is a printed label.
	KindLabel ItemKind = "label"
)

// ErrUnknownItemKind indicates a kind outside the closed set.
var ErrUnknownItemKind = shared.Validation("catalog: unknown item kind")

// ParseItemKind validates a raw kind string.
func ParseItemKind(raw string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case KindMaterial, KindPackaging, KindLabel:
		return k, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownItemKind, raw)
}

// Item is a purchasable good. Implementations are Material, Packaging and Label.
type Item interface {
	ItemID() string
	Kind() ItemKind
	DisplayName() string
	isItem()
}

// Material is a raw input.
type Material struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

func (m Material) ItemID() string {
	return m.ID
}

func (m Material) Kind() ItemKind {
	return KindMaterial
}

func (m Material) DisplayName() string {
	if m.Category == "" {
		return m.Name
	}
	return m.Name + " (" + m.Category + ")"
}

func (Material) isItem() {}

// Packaging is a container; Capacity is free text such as "500 ml".
type Packaging struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity string `json:"capacity,omitempty"`
}

func (p Packaging) ItemID() string {
	return p.ID
}

func (p Packaging) Kind() ItemKind {
	return KindPackaging
}

func (p Packaging) DisplayName() string {
	if p.Capacity == "" {
		return p.Name
	}
	return p.Name + " " + p.Capacity
}

func (Packaging) isItem() {}

// Label is a printed label identified by its size.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size string `json:"size,omitempty"`
}

func (l Label) ItemID() string {
	return l.ID
}

func (l Label) Kind() ItemKind {
	return KindLabel
}

func (l Label) DisplayName() string {
	if l.Size == "" {
		return l.Name
	}
	return l.Name + " [" + l.Size + "]"
}

func (Label) isItem() {}

// NewItem builds the variant matching kind.
func NewItem(kind ItemKind, id, name string) (Item, error) {
	switch kind {
	case KindMaterial:
		return Material{ID: id, Name: name}, nil
	case KindPackaging:
		return Packaging{ID: id, Name: name}, nil
	case KindLabel:
		return Label{ID: id, Name: name}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownItemKind, string(kind))
}
