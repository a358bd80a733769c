// Package search carries the pagination and parameter envelopes used at the
// stored-procedure boundary: ad-hoc filters go in as one XML parameter,
// results come back as a page with request metadata.
package search

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"sort"
	"strconv"
)

// Well-known parameter keys the procedures understand.
const (
	ParamPageStart = "pageStart"
	ParamPageSize  = "pageSize"
)

const defaultPageSize = 10

// Meta describes which page a result set represents.
type Meta struct {
	Page         int `json:"page"`
	PageSize     int `json:"pageSize"`
	TotalResults int `json:"totalResults"`
}

// Page is the raw result envelope from a list procedure: a JSON-encoded
// payload whose shape depends on the caller, plus paging metadata.
type Page struct {
	Result json.RawMessage `json:"result"`
	Meta   Meta            `json:"meta"`
}

// SearchPage is the typed variant built once the payload is decoded.
type SearchPage[T any] struct {
	List []T  `json:"list"`
	Meta Meta `json:"meta"`
}

// ParamsToXML serializes a flat key/value mapping into one XML document with
// a child element per key: <Search><Key>Value</Key>...</Search>. Values are
// XML-escaped, keys are emitted in sorted order so output is deterministic.
// An empty or nil mapping yields an empty string; callers pass the empty
// envelope through, they do not omit the parameter.
func ParamsToXML(params map[string]string, rootTag string) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteByte('<')
	b.WriteString(rootTag)
	b.WriteByte('>')
	for _, k := range keys {
		b.WriteByte('<')
		b.WriteString(k)
		b.WriteByte('>')
		xml.EscapeText(&b, []byte(params[k]))
		b.WriteString("</")
		b.WriteString(k)
		b.WriteByte('>')
	}
	b.WriteString("</")
	b.WriteString(rootTag)
	b.WriteByte('>')
	return b.String()
}

// BindSearchPage builds the page envelope for records from the paging hints
// in params. Defaults to pageSize=10, page=1 when hints are absent or
// malformed. The implied row offset (pageStart-1)*pageSize is advisory:
// pagination is applied by the stored procedure, not recomputed here.
func BindSearchPage[T any](params map[string]string, records []T) SearchPage[T] {
	page := SearchPage[T]{List: records}
	page.Meta.PageSize = defaultPageSize
	page.Meta.Page = 1

	start, okStart := atoi(params[ParamPageStart])
	size, okSize := atoi(params[ParamPageSize])
	if okStart && okSize {
		page.Meta.PageSize = size
		page.Meta.Page = start
	}
	return page
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
