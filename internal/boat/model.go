package boat

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

var ErrImageNotFound = errors.New("boat image not found")

type BoatImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DataURL   string    `json:"data_url" db:"data_url"`
	Caption   string    `json:"caption" db:"caption"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	IsCover   bool      `json:"is_cover" db:"is_cover"`
}

type Boat struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	Code            string      `json:"code" db:"code"`
	Name            string      `json:"name" db:"name"`
	Slug            string      `json:"slug" db:"slug"`
	Active          bool        `json:"active" db:"active"`
	Summary         string      `json:"summary" db:"summary"`
	AboutMd         string      `json:"about_md" db:"about_md"`
	DeliveryNotesMd string      `json:"delivery_notes_md" db:"delivery_notes_md"`
	Images          []BoatImage `json:"images" db:"-"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	slugTrim     = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a URL slug from a boat name: lowercase, non-word characters
// stripped, runs of whitespace/underscores/hyphens collapsed to a single
// hyphen, leading and trailing hyphens trimmed. Idempotent.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = slugTrim.ReplaceAllString(s, "")
	return s
}

// AddImages appends images to the boat's gallery. The first image of a
// previously empty gallery becomes the cover.
func (b *Boat) AddImages(images ...BoatImage) {
	for i := range images {
		images[i].SortOrder = len(b.Images)
		images[i].IsCover = len(b.Images) == 0
		b.Images = append(b.Images, images[i])
	}
}

// SetCover marks the given image as the cover and clears the flag on every
// other image, keeping at most one cover at all times.
func (b *Boat) SetCover(imageID uuid.UUID) error {
	found := false
	for i := range b.Images {
		if b.Images[i].ID == imageID {
			found = true
		}
	}
	if !found {
		return ErrImageNotFound
	}

	for i := range b.Images {
		b.Images[i].IsCover = b.Images[i].ID == imageID
	}
	return nil
}

// RemoveImage drops an image from the gallery. If the cover was removed and
// other images remain, the first image by order becomes the new cover.
// Sort orders are renumbered to stay dense.
func (b *Boat) RemoveImage(imageID uuid.UUID) error {
	idx := -1
	for i := range b.Images {
		if b.Images[i].ID == imageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrImageNotFound
	}

	wasCover := b.Images[idx].IsCover
	b.Images = append(b.Images[:idx], b.Images[idx+1:]...)

	if wasCover && len(b.Images) > 0 {
		b.Images[0].IsCover = true
	}
	b.renumber()
	return nil
}

// Reorder rearranges the gallery to match the given id sequence, which must
// be a permutation of the current image ids.
func (b *Boat) Reorder(orderedIDs []uuid.UUID) error {
	if len(orderedIDs) != len(b.Images) {
		return ErrImageNotFound
	}

	byID := make(map[uuid.UUID]BoatImage, len(b.Images))
	for _, img := range b.Images {
		byID[img.ID] = img
	}

	reordered := make([]BoatImage, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		img, ok := byID[id]
		if !ok {
			return ErrImageNotFound
		}
		delete(byID, id)
		reordered = append(reordered, img)
	}

	b.Images = reordered
	b.renumber()
	return nil
}

// CoverImage returns the current cover, or nil when the gallery is empty.
func (b *Boat) CoverImage() *BoatImage {
	for i := range b.Images {
		if b.Images[i].IsCover {
			return &b.Images[i]
		}
	}
	return nil
}

func (b *Boat) renumber() {
	for i := range b.Images {
		b.Images[i].SortOrder = i
	}
}
