// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package filters

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/tracepoint/internal/models"
)

// An elements chain is a ';'-separated list of elements, innermost first:
//
//	a.nav-link.active:href="/pricing"nth-child="2"nth-of-type="1"text="Pricing";div:attr_id="menu"
var (
	chainSplitRegex     = regexp.MustCompile(`(?:[^\s;"]|"(?:\\.|[^"])*")+`)
	classAttrSplitRegex = regexp.MustCompile(`^(.*?)($|:([a-zA-Z\-_0-9]*=.*))`)
	attributeRegex      = regexp.MustCompile(`(.*?)="(.*?[^\\])"`)
)

// ParseElementsChain decodes an elements chain. Malformed pieces are
// skipped, an empty chain yields an empty (non-nil) slice.
func ParseElementsChain(chain string) []models.Element {
	out := []models.Element{}
	if strings.TrimSpace(chain) == "" {
		return out
	}

	for i, raw := range chainSplitRegex.FindAllString(chain, -1) {
		m := classAttrSplitRegex.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		el := models.Element{Order: i, Attributes: map[string]string{}}

		tagAndClass := strings.Split(m[1], ".")
		el.TagName = tagAndClass[0]
		for _, c := range tagAndClass[1:] {
			if c != "" {
				el.AttrClass = append(el.AttrClass, c)
			}
		}

		if m[3] != "" {
			for _, am := range attributeRegex.FindAllStringSubmatch(m[3], -1) {
				applyAttribute(&el, am[1], unescape(am[2]))
			}
		}
		out = append(out, el)
	}
	return out
}

func applyAttribute(el *models.Element, key, value string) {
	switch key {
	case "text":
		el.Text = value
	case "href":
		el.Href = value
	case "attr_id":
		el.AttrID = value
	case "nth-child":
		el.NthChild, _ = strconv.Atoi(value)
	case "nth-of-type":
		el.NthOfType, _ = strconv.Atoi(value)
	case "attr_class":
		// Already taken from the tag prefix.
	default:
		el.Attributes[key] = value
	}
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}
