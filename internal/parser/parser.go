package parser

import "github.com/samber/oops"

// Flag is a modifier keyword detected on a member signature.
type Flag string

const (
	FlagPrivate   Flag = "private"
	FlagProtected Flag = "protected"
	FlagReadonly  Flag = "readonly"
	FlagOptional  Flag = "optional"
)

// flagOrder is the order flags are checked in and reported in.
func flagOrder() []Flag {
	return []Flag{FlagPrivate, FlagProtected, FlagReadonly, FlagOptional}
}

// DocPage is one parsed reference page. Every sequence keeps document order
// and is never nil.
type DocPage struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Extends      *string   `json:"extends,omitempty"`
	Constructors []DocItem `json:"constructors"`
	Properties   []DocItem `json:"properties"`
	Methods      []DocItem `json:"methods"`
	Others       []Section `json:"others"`
}

// Section is a second-level block whose header is not one of the recognized
// names. Content is the raw body.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DocItem is one constructor, property or method block.
type DocItem struct {
	Name        string         `json:"name"`
	Signature   string         `json:"signature"`
	Flags       []Flag         `json:"flags"`
	Parameters  []DocParameter `json:"parameters"`
	Returns     string         `json:"returns"`
	Description string         `json:"description"`
	// Source is always empty; provenance links are not extracted.
	Source string `json:"source"`
}

// HasFlag reports whether the item carries f.
func (i DocItem) HasFlag(f Flag) bool {
	for _, got := range i.Flags {
		if got == f {
			return true
		}
	}
	return false
}

// DocParameter is a row of an item's parameter list.
type DocParameter struct {
	Name         string `json:"name"`
	Optional     bool   `json:"optional"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// MemberKind names the subsection a member was listed under.
type MemberKind string

const (
	MemberConstructor MemberKind = "constructor"
	MemberProperty    MemberKind = "property"
	MemberMethod      MemberKind = "method"
)

// ParseMemberKind accepts "" (any kind) or one of the member kinds.
func ParseMemberKind(value string) (MemberKind, error) {
	switch kind := MemberKind(value); kind {
	case "", MemberConstructor, MemberProperty, MemberMethod:
		return kind, nil
	default:
		return "", oops.
			Code("INVALID_ARGS").
			With("kind", value).
			Hint("Supported kinds: constructor, property, method").
			Errorf("unknown member kind %q", value)
	}
}

// Member pairs an item with the kind of subsection it came from.
type Member struct {
	Kind MemberKind
	Item DocItem
}

// Members flattens constructors, properties and methods in that order.
func (p DocPage) Members() []Member {
	members := make([]Member, 0, len(p.Constructors)+len(p.Properties)+len(p.Methods))
	for _, item := range p.Constructors {
		members = append(members, Member{Kind: MemberConstructor, Item: item})
	}
	for _, item := range p.Properties {
		members = append(members, Member{Kind: MemberProperty, Item: item})
	}
	for _, item := range p.Methods {
		members = append(members, Member{Kind: MemberMethod, Item: item})
	}
	return members
}

// IsEmpty reports whether nothing beyond the title was extracted.
func (p DocPage) IsEmpty() bool {
	return p.Description == "" &&
		p.Extends == nil &&
		len(p.Constructors) == 0 &&
		len(p.Properties) == 0 &&
		len(p.Methods) == 0 &&
		len(p.Others) == 0
}
