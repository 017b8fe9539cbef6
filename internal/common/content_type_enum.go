package common

import "strings"

// ItemType is the kind of a catalog entry. It never changes after creation.
type ItemType string

const (
	ItemTypeText  ItemType = "text"
	ItemTypeImage ItemType = "image"
	ItemTypeQuote ItemType = "quote"
)

// String returns the string representation
func (t ItemType) String() string {
	return string(t)
}

// IsValid checks if the item type is one of the known kinds
func (t ItemType) IsValid() bool {
	return t == ItemTypeText || t == ItemTypeImage || t == ItemTypeQuote
}

// HasBody reports whether items of this type carry a required body.
func (t ItemType) HasBody() bool {
	return t == ItemTypeText || t == ItemTypeQuote
}

// MediaType applies to image items only.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeGIF   MediaType = "gif"
	MediaTypeVideo MediaType = "video"
)

func (m MediaType) String() string {
	return string(m)
}

func (m MediaType) IsValid() bool {
	return m == MediaTypeImage || m == MediaTypeGIF || m == MediaTypeVideo
}

// DetectMediaType maps an upload MIME type to the media type stored on an item.
func DetectMediaType(mimeType string) MediaType {
	lowerMimeType := strings.ToLower(mimeType)
	if lowerMimeType == "image/gif" {
		return MediaTypeGIF
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaTypeVideo
	}
	return MediaTypeImage // Default fallback
}

// ReactionKind is one of the four fixed reaction counters.
type ReactionKind string

const (
	ReactionHeart    ReactionKind = "heart"
	ReactionEyes     ReactionKind = "eyes"
	ReactionGrinning ReactionKind = "grinning"
	ReactionBird     ReactionKind = "bird"
)

// ReactionKinds lists the counters in display order.
var ReactionKinds = []ReactionKind{ReactionHeart, ReactionEyes, ReactionGrinning, ReactionBird}

func (k ReactionKind) IsValid() bool {
	for _, known := range ReactionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ChatTag marks an item as a chat message.
const ChatTag = "chat"
