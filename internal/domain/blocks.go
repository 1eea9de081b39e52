// Package domain – content blocks.
//
// A post body is an ordered sequence of heterogeneous blocks, each a
// {type, data} pair. The set of block types is closed: decoding maps every
// recognized type to its typed payload, and anything else to BlockUnknown
// so consumers can render a visible fallback instead of failing silently.
// Adding a new block type means adding a constant here and handling it at
// every switch over Kind().
package domain

import (
	"encoding/json"
	"fmt"
)

// BlockType enumerates the recognized content block types plus the explicit
// catch-all for payloads produced by a newer authoring tool.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
	BlockCode      BlockType = "code"
	BlockImage     BlockType = "image"
	BlockGallery   BlockType = "gallery"
	BlockTable     BlockType = "table"
	BlockFAQ       BlockType = "faq"
	BlockProduct   BlockType = "product"
	BlockCallout   BlockType = "callout"
	BlockEmbed     BlockType = "embed"
	BlockDivider   BlockType = "divider"

	// BlockUnknown marks a type this build does not recognize.
	BlockUnknown BlockType = "unknown"
)

var knownBlockTypes = map[BlockType]struct{}{
	BlockHeading: {}, BlockParagraph: {}, BlockList: {}, BlockCode: {},
	BlockImage: {}, BlockGallery: {}, BlockTable: {}, BlockFAQ: {},
	BlockProduct: {}, BlockCallout: {}, BlockEmbed: {}, BlockDivider: {},
}

// Block is one content unit of a post body. Data stays raw until a consumer
// decodes it through DecodeData for the block's Kind.
type Block struct {
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Kind returns the block's recognized type, or BlockUnknown for anything
// outside the closed set (including an empty type).
func (b Block) Kind() BlockType {
	if _, ok := knownBlockTypes[b.Type]; ok {
		return b.Type
	}
	return BlockUnknown
}

// Typed payloads, matching the authoring schema field for field.

// HeadingData is a section heading with level 1–5.
type HeadingData struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ParagraphData is a run of rich text.
type ParagraphData struct {
	Text string `json:"text"`
}

// ListItem is one entry of a list block: an optional title followed by
// zero or more paragraphs.
type ListItem struct {
	Title      string          `json:"title"`
	Paragraphs []ParagraphData `json:"paragraphs"`
}

// ListData is an ordered, unordered, or numbered list.
type ListData struct {
	Type  string     `json:"type"` // ordered | unordered | numbered
	Items []ListItem `json:"items"`
}

// CodeData is a fenced code snippet.
type CodeData struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// ImageData is a single image with optional caption.
type ImageData struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// GalleryData is a grid of images.
type GalleryData struct {
	Images []ImageData `json:"images"`
}

// TableData is a simple header + rows table.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQData is an expandable FAQ section.
type FAQData struct {
	Items []FAQItem `json:"items"`
}

// ProductData is an affiliate/product card.
type ProductData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	ButtonText  string `json:"buttonText,omitempty"`
}

// CalloutData is a highlighted aside (info, warning, tip, ...).
type CalloutData struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// EmbedData references external content by URL (video, social post, ...).
type EmbedData struct {
	URL string `json:"url"`
}

// DividerData is a horizontal rule with an optional style hint.
type DividerData struct {
	Style string `json:"style,omitempty"`
}

// DecodeData unmarshals the block payload into the typed struct for its
// Kind. For BlockUnknown it returns the raw payload untouched so callers
// can surface it verbatim. The returned value is one of the *Data types
// above, or json.RawMessage for unknown blocks.
func (b Block) DecodeData() (any, error) {
	decode := func(v any) (any, error) {
		if len(b.Data) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(b.Data, v); err != nil {
			return nil, fmt.Errorf("decode %s block: %w", b.Type, err)
		}
		return v, nil
	}
	switch b.Kind() {
	case BlockHeading:
		return decode(&HeadingData{})
	case BlockParagraph:
		return decode(&ParagraphData{})
	case BlockList:
		return decode(&ListData{})
	case BlockCode:
		return decode(&CodeData{})
	case BlockImage:
		return decode(&ImageData{})
	case BlockGallery:
		return decode(&GalleryData{})
	case BlockTable:
		return decode(&TableData{})
	case BlockFAQ:
		return decode(&FAQData{})
	case BlockProduct:
		return decode(&ProductData{})
	case BlockCallout:
		return decode(&CalloutData{})
	case BlockEmbed:
		return decode(&EmbedData{})
	case BlockDivider:
		return decode(&DividerData{})
	case BlockUnknown:
		return b.Data, nil
	}
	return b.Data, nil
}
