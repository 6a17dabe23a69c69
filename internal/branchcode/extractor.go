// Package branchcode reads the BranchCode attribute from an XML document
// previously exported by Accurate.
package branchcode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

// Errors wrapped by ParseError when the document is not well-formed in ways
// encoding/xml tolerates.
var (
	ErrNoRootElement      = errors.New("document has no root element")
	ErrMultipleRoots      = errors.New("document has more than one root element")
	ErrContentOutsideRoot = errors.New("text outside the root element")
	ErrUndeclaredPrefix   = errors.New("undeclared namespace prefix")
)

// xmlNamespace is the URI encoding/xml substitutes for the reserved xml prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

var branchCodePath = xmlpath.MustCompile("/*/@BranchCode")

// ParseError reports a sample document that is not well-formed XML.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to parse XML %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to parse XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extract returns the BranchCode attribute of the document's root element.
// A missing or empty attribute yields "" and no error; callers decide
// whether that is acceptable. Documents declaring a non UTF-8 encoding are
// decoded before lookup.
func Extract(r io.Reader) (string, error) {
	return extract(r, "")
}

// ExtractFile is Extract for a file on disk.
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open XML file: %w", err)
	}
	defer f.Close()

	return extract(f, path)
}

func extract(r io.Reader, source string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read XML: %w", err)
	}
	if err := checkWellFormed(data); err != nil {
		return "", &ParseError{Source: source, Err: err}
	}

	root, err := xmlpath.ParseDecoder(newDecoder(data))
	if err != nil {
		return "", &ParseError{Source: source, Err: err}
	}

	code, _ := branchCodePath.String(root)
	return code, nil
}

func newDecoder(data []byte) *xml.Decoder {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder
}

// checkWellFormed enforces the document rules encoding/xml leaves to the
// caller: exactly one root element, no text around it, and every namespace
// prefix declared.
func checkWellFormed(data []byte) error {
	decoder := newDecoder(data)

	var scopes [][]string
	depth, roots := 0, 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return ErrMultipleRoots
				}
			}
			scopes = append(scopes, declaredNamespaces(t))
			if err := checkNamespaces(t, scopes); err != nil {
				return err
			}
			depth++
		case xml.EndElement:
			scopes = scopes[:len(scopes)-1]
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.Trim(t, " \t\r\n\ufeff")) > 0 {
				return ErrContentOutsideRoot
			}
		}
	}

	if roots == 0 {
		return ErrNoRootElement
	}
	return nil
}

// declaredNamespaces returns the URIs bound by the element's xmlns attributes.
func declaredNamespaces(element xml.StartElement) []string {
	var uris []string
	for _, attr := range element.Attr {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			uris = append(uris, attr.Value)
		}
	}
	return uris
}

// checkNamespaces rejects names whose prefix encoding/xml could not resolve;
// such names keep the bare prefix as their Space.
func checkNamespaces(element xml.StartElement, scopes [][]string) error {
	if !namespaceInScope(element.Name.Space, scopes) {
		return fmt.Errorf("%w %q on element %s", ErrUndeclaredPrefix, element.Name.Space, element.Name.Local)
	}
	for _, attr := range element.Attr {
		if attr.Name.Space == "xmlns" {
			continue
		}
		if !namespaceInScope(attr.Name.Space, scopes) {
			return fmt.Errorf("%w %q on attribute %s", ErrUndeclaredPrefix, attr.Name.Space, attr.Name.Local)
		}
	}
	return nil
}

func namespaceInScope(space string, scopes [][]string) bool {
	if space == "" || space == xmlNamespace {
		return true
	}
	for _, uris := range scopes {
		for _, uri := range uris {
			if uri == space {
				return true
			}
		}
	}
	return false
}
