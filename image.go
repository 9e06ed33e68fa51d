package vtscreen

import (
	"crypto/sha256"
	"sort"
	"time"
)

// DefaultImagePoolBudget is the default memory budget for decoded images.
const DefaultImagePoolBudget = 320 * 1024 * 1024

// ImageFormat represents the pixel format of stored image data.
type ImageFormat uint8

const (
	ImageFormatRGBA ImageFormat = iota // 32-bit RGBA (4 bytes per pixel)
	ImageFormatRGB                     // 24-bit RGB (3 bytes per pixel)
	ImageFormatPNG                     // PNG encoded
)

// Image is a decoded raster held by the pool. Cells reference it through
// fragments; an image stays alive as long as any fragment points at it, even
// after the pool evicts it.
type Image struct {
	ID         uint32
	Format     ImageFormat
	Width      uint32 // pixels
	Height     uint32 // pixels
	Data       []byte
	Hash       [32]byte
	AccessedAt time.Time
}

// ImageFragment ties one grid cell to the slice of an image it displays.
// Offset is the cell's position within the image, in cells.
type ImageFragment struct {
	Image  *Image
	Offset CellLocation
}

// ImagePool stores decoded images, deduplicating identical payloads by hash
// and evicting least recently used entries when the memory budget is
// exceeded. The pool is not safe for concurrent use; the owning terminal
// serializes access.
type ImagePool struct {
	images   map[uint32]*Image
	hashToID map[[32]byte]uint32

	nextID     uint32
	maxMemory  int64
	usedMemory int64
}

// NewImagePool creates a pool with the given memory budget in bytes.
func NewImagePool(maxMemory int64) *ImagePool {
	return &ImagePool{
		images:    make(map[uint32]*Image),
		hashToID:  make(map[[32]byte]uint32),
		maxMemory: maxMemory,
	}
}

// SetMaxMemory changes the memory budget, pruning immediately if needed.
func (p *ImagePool) SetMaxMemory(bytes int64) {
	p.maxMemory = bytes
	p.prune()
}

// Store adds an image and returns it. An identical payload (same hash)
// returns the already stored image instead of a new copy.
func (p *ImagePool) Store(format ImageFormat, width, height uint32, data []byte) *Image {
	hash := sha256.Sum256(data)
	if id, ok := p.hashToID[hash]; ok {
		if img, ok := p.images[id]; ok {
			img.AccessedAt = time.Now()
			return img
		}
	}

	p.nextID++
	img := &Image{
		ID:         p.nextID,
		Format:     format,
		Width:      width,
		Height:     height,
		Data:       data,
		Hash:       hash,
		AccessedAt: time.Now(),
	}
	p.images[img.ID] = img
	p.hashToID[hash] = img.ID
	p.usedMemory += int64(len(data))
	p.prune()
	return img
}

// StoreWithID adds an image under a caller-chosen ID, replacing any previous
// image with that ID. The kitty protocol names images this way.
func (p *ImagePool) StoreWithID(id uint32, format ImageFormat, width, height uint32, data []byte) *Image {
	if old, ok := p.images[id]; ok {
		p.usedMemory -= int64(len(old.Data))
		delete(p.hashToID, old.Hash)
	}

	img := &Image{
		ID:         id,
		Format:     format,
		Width:      width,
		Height:     height,
		Data:       data,
		Hash:       sha256.Sum256(data),
		AccessedAt: time.Now(),
	}
	p.images[id] = img
	p.hashToID[img.Hash] = id
	p.usedMemory += int64(len(data))
	if id >= p.nextID {
		p.nextID = id + 1
	}
	p.prune()
	return img
}

// Image returns the stored image for the given ID, or nil.
func (p *ImagePool) Image(id uint32) *Image {
	if img, ok := p.images[id]; ok {
		img.AccessedAt = time.Now()
		return img
	}
	return nil
}

// Delete removes an image from the pool. Fragments already placed keep their
// reference.
func (p *ImagePool) Delete(id uint32) {
	if img, ok := p.images[id]; ok {
		p.usedMemory -= int64(len(img.Data))
		delete(p.hashToID, img.Hash)
		delete(p.images, id)
	}
}

// Count returns the number of stored images.
func (p *ImagePool) Count() int {
	return len(p.images)
}

// UsedMemory returns the current memory usage in bytes.
func (p *ImagePool) UsedMemory() int64 {
	return p.usedMemory
}

// Reset drops all stored images.
func (p *ImagePool) Reset() {
	p.images = make(map[uint32]*Image)
	p.hashToID = make(map[[32]byte]uint32)
	p.usedMemory = 0
}

// prune evicts least recently used images until the pool fits its budget.
func (p *ImagePool) prune() {
	if p.maxMemory <= 0 || p.usedMemory <= p.maxMemory {
		return
	}

	candidates := make([]*Image, 0, len(p.images))
	for _, img := range p.images {
		candidates = append(candidates, img)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].AccessedAt.Before(candidates[j].AccessedAt)
	})

	for _, img := range candidates {
		if p.usedMemory <= p.maxMemory {
			break
		}
		delete(p.hashToID, img.Hash)
		delete(p.images, img.ID)
		p.usedMemory -= int64(len(img.Data))
	}
}
