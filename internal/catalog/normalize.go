package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"gocatalog/internal/common"
)

// FieldInput is a single-valued query field. It arrives either as a bare
// string or as a selection object from a picker widget.
type FieldInput interface {
	isFieldInput()
}

// Raw is a bare scalar field value.
type Raw string

// Choice is a picker selection. Any of its members may be empty.
type Choice struct {
	Value string `json:"value"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

func (Raw) isFieldInput()    {}
func (Choice) isFieldInput() {}

// TagsInput is the tag filter in one of its accepted shapes.
type TagsInput interface {
	isTagsInput()
}

// TagText is a whitespace-delimited list of tags.
type TagText string

// Tags is an already split list of tags.
type Tags []string

// TagList is a list of picker entries, each a Raw or a Choice.
type TagList []FieldInput

func (TagText) isTagsInput() {}
func (Tags) isTagsInput()    {}
func (TagList) isTagsInput() {}

// NormalizeItemType returns one of the known item types, or "" for no filter.
func NormalizeItemType(in FieldInput) common.ItemType {
	var s string
	switch v := in.(type) {
	case Raw:
		s = string(v)
	case Choice:
		s = firstNonEmpty(v.Value, v.ID)
	}

	t := common.ItemType(strings.TrimSpace(s))
	if !t.IsValid() {
		return ""
	}
	return t
}

// NormalizeID returns the referenced id, or "" for no filter.
func NormalizeID(in FieldInput) string {
	switch v := in.(type) {
	case Raw:
		return strings.TrimSpace(string(v))
	case Choice:
		return strings.TrimSpace(firstNonEmpty(v.ID, v.Value))
	}
	return ""
}

// NormalizeTags flattens in into trimmed, non-empty, de-duplicated tags in
// first-seen order. It returns nil when nothing is left.
func NormalizeTags(in TagsInput) []string {
	var raw []string
	switch v := in.(type) {
	case TagText:
		raw = strings.Fields(string(v))
	case Tags:
		raw = v
	case TagList:
		for _, entry := range v {
			switch e := entry.(type) {
			case Raw:
				raw = append(raw, string(e))
			case Choice:
				raw = append(raw, firstNonEmpty(e.Value, e.Name))
			}
		}
	}

	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decodeField classifies arbitrary JSON as a FieldInput. Shapes it does not
// understand decode to nil.
func decodeField(data json.RawMessage) FieldInput {
	if len(data) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return fieldFromValue(v)
}

func fieldFromValue(v interface{}) FieldInput {
	switch x := v.(type) {
	case string:
		return Raw(x)
	case float64:
		return Raw(strconv.FormatFloat(x, 'f', -1, 64))
	case map[string]interface{}:
		return Choice{
			Value: scalarString(x["value"]),
			ID:    scalarString(x["id"]),
			Label: scalarString(x["label"]),
			Name:  scalarString(x["name"]),
		}
	}
	return nil
}

// decodeTags classifies arbitrary JSON as a TagsInput.
func decodeTags(data json.RawMessage) TagsInput {
	if len(data) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch x := v.(type) {
	case string:
		return TagText(x)
	case []interface{}:
		plain := make(Tags, 0, len(x))
		list := make(TagList, 0, len(x))
		allStrings := true
		for _, e := range x {
			if s, ok := e.(string); ok {
				plain = append(plain, s)
			} else {
				allStrings = false
			}
			if f := fieldFromValue(e); f != nil {
				list = append(list, f)
			}
		}
		if allStrings {
			return plain
		}
		return list
	}
	return nil
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
