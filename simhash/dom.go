package simhash

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Signature summarises the structure of a rendered document.
// Hash covers element shingles, so it tracks the shape of the tree;
// Elements catches growth the hash majority vote can absorb, such as
// another page of identical list cards being appended. TextBytes tracks
// data filled into an already rendered skeleton.
type Signature struct {
	Hash      uint64
	Elements  int
	TextBytes int
}

// Settled reports whether next is the same document as s: equal element
// count, equal visible text length and a hash within threshold bits.
// A document without elements or without text is never settled, since a
// skeleton waiting for data looks exactly like that.
func (s Signature) Settled(next Signature, threshold int) bool {
	if s.Elements == 0 || s.TextBytes == 0 {
		return false
	}
	if s.Elements != next.Elements || s.TextBytes != next.TextBytes {
		return false
	}
	return Similar(s.Hash, next.Hash, threshold)
}

// DOM computes the Signature of an HTML document. Elements are named by
// tag plus sorted class list ("div.card.entry-wrapper"); script and style
// bodies are not counted as text.
func DOM(htmlStr string) Signature {
	var sig Signature
	elems := elements(htmlStr, &sig.TextBytes)
	sig.Elements = len(elems)
	if len(elems) == 0 {
		return sig
	}

	if sh := shingles(elems, 3); len(sh) > 0 {
		sig.Hash = Hash(sh)
	} else {
		sig.Hash = Hash(elems)
	}
	return sig
}

// elements walks htmlStr with the tokenizer and returns the opened
// elements in document order. Visible text length is added to textBytes.
func elements(htmlStr string, textBytes *int) []string {
	z := html.NewTokenizer(strings.NewReader(htmlStr))
	var out []string
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			name := string(tn)
			if name == "script" || name == "style" {
				skip++
			}
			out = append(out, elementName(z, name, hasAttr))
		case html.EndTagToken:
			tn, _ := z.TagName()
			if n := string(tn); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				*textBytes += len(strings.TrimSpace(string(z.Text())))
			}
		}
	}
}

func elementName(z *html.Tokenizer, tag string, hasAttr bool) string {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) != "class" {
			continue
		}
		classes := strings.Fields(string(val))
		if len(classes) == 0 {
			return tag
		}
		sort.Strings(classes)
		return tag + "." + strings.Join(classes, ".")
	}
	return tag
}

// shingles creates n-gram shingles from a slice of tokens.
func shingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
