package llm

import (
	"encoding/json"
	"fmt"
)

type ContentItemType string

const (
	TypeText      ContentItemType = "text"
	TypeJSON      ContentItemType = "json"
	TypeImageURL  ContentItemType = "imageURL"
	TypeImageData ContentItemType = "imageData"
)

// ContentItem is one block of message content. Vendors that cannot represent
// a block (for example image blocks on a text-only API) degrade it to a
// textual placeholder instead of failing.
type ContentItem interface {
	Type() ContentItemType
}

type TextContent struct {
	Text string
}

func (tc *TextContent) Type() ContentItemType {
	return TypeText
}

type JSONContent struct {
	Data json.RawMessage
}

func (jc *JSONContent) Type() ContentItemType {
	return TypeJSON
}

type ImageURLContent struct {
	URL string
}

func (iuc *ImageURLContent) Type() ContentItemType {
	return TypeImageURL
}

type ImageDataContent struct {
	// MediaType is the MIME type of the image, e.g. "image/png".
	MediaType string
	// Data is the base64 encoded image payload, without a data: URI prefix.
	Data string
}

func (idc *ImageDataContent) Type() ContentItemType {
	return TypeImageData
}

type Content []ContentItem

// Text returns new content with the given text.
func Text(text string) Content {
	return Content{
		&TextContent{Text: text},
	}
}

// Textf returns new content with the provided formatted text.
func Textf(format string, args ...any) Content {
	return Text(fmt.Sprintf(format, args...))
}

// JSON returns new content holding the given value encoded as JSON.
func JSON(value any) (Content, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return RawJSON(data), nil
}

// RawJSON returns new content holding already encoded JSON.
func RawJSON(data json.RawMessage) Content {
	return Content{
		&JSONContent{Data: data},
	}
}

// TextAndImage returns new content with the given text and image URL.
func TextAndImage(text, imageURL string) Content {
	return Content{
		&TextContent{Text: text},
		&ImageURLContent{URL: imageURL},
	}
}

// AddImage adds an image URL to the content.
func (c *Content) AddImage(imageURL string) {
	*c = append(*c, &ImageURLContent{URL: imageURL})
}

// AddImageData adds an inline base64 image to the content.
func (c *Content) AddImageData(mediaType, data string) {
	*c = append(*c, &ImageDataContent{MediaType: mediaType, Data: data})
}

// Append adds the text to the last content item if it's a text item, otherwise
// it adds a new text item to the end of the list.
func (c *Content) Append(text string) {
	if l := len(*c); l > 0 {
		if tc, ok := (*c)[l-1].(*TextContent); ok {
			tc.Text += text
			return
		}
	}
	*c = append(*c, &TextContent{Text: text})
}

// JoinText concatenates the text of every text item in the content.
func (c Content) JoinText() string {
	var out string
	for _, item := range c {
		if tc, ok := item.(*TextContent); ok {
			out += tc.Text
		}
	}
	return out
}
