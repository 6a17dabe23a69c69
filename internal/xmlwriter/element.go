package xmlwriter

import "encoding/xml"

// Element is one node of an immutable XML tree. An element has either
// children, text, or neither; an element with text "" is not the same as an
// element without text.
type Element struct {
	name     string
	attrs    []xml.Attr
	text     string
	hasText  bool
	children []Element
}

// NewElement returns a container element.
func NewElement(name string, attrs []xml.Attr, children ...Element) Element {
	return Element{
		name:     name,
		attrs:    append([]xml.Attr(nil), attrs...),
		children: append([]Element(nil), children...),
	}
}

// TextElement returns a leaf element with text content, possibly empty.
func TextElement(name, text string) Element {
	return Element{name: name, text: text, hasText: true}
}

// EmptyElement returns a leaf element without text.
func EmptyElement(name string) Element {
	return Element{name: name}
}

// Attr builds an unqualified attribute.
func Attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (e Element) Name() string {
	return e.name
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes in document order.
func (e Element) Attrs() []xml.Attr {
	return append([]xml.Attr(nil), e.attrs...)
}

// Text returns the text content and whether the element has any.
func (e Element) Text() (string, bool) {
	return e.text, e.hasText
}

// Children returns a copy of the child elements.
func (e Element) Children() []Element {
	return append([]Element(nil), e.children...)
}

// Child returns the first child named name.
func (e Element) Child(name string) (Element, bool) {
	for _, c := range e.children {
		if c.name == name {
			return c, true
		}
	}
	return Element{}, false
}
