// Package intent turns parsed command-line arguments and the stored
// configuration into the single action an invocation performs.
//
// Resolution walks an ordered rule table; the first rule whose condition
// holds decides the action. Update actions are applied to the document and
// persisted before Resolve returns.
package intent

import (
	"errors"
	"strings"

	"github.com/avivsinai/rustlator/internal/config"
)

var (
	// ErrMissingAPIURL is returned when an action needs the service but no api_url is stored.
	ErrMissingAPIURL = errors.New("missing 'api_url' in configuration file; set one with --api <url>")
	// ErrMissingText is returned when nothing was asked for.
	ErrMissingText = errors.New("missing TEXT argument. Either provide text to translate or use --status.")
)

// Kind names a resolved action.
type Kind int

const (
	UpdateAPIURL Kind = iota + 1
	ListLanguages
	UpdateLanguages
	ShowStatus
	Translate
)

func (k Kind) String() string {
	switch k {
	case UpdateAPIURL:
		return "update-api-url"
	case ListLanguages:
		return "list-languages"
	case UpdateLanguages:
		return "update-languages"
	case ShowStatus:
		return "show-status"
	case Translate:
		return "translate"
	default:
		return "unknown"
	}
}

// NeedsService reports whether the action performs a network call.
func (k Kind) NeedsService() bool {
	switch k {
	case ListLanguages, ShowStatus, Translate:
		return true
	default:
		return false
	}
}

// Args is the parsed command line. Nil pointers mean the value was not given.
type Args struct {
	Text   *string
	To     *string
	From   *string
	API    *string
	Status bool
	List   bool
}

// Intent is the resolved action. Which fields are set depends on Kind:
// UpdateAPIURL sets APIURL; UpdateLanguages sets the supplied SetTo/SetFrom;
// ListLanguages sets APIURL; ShowStatus and Translate set From, To and
// APIURL, and Translate also sets Text.
type Intent struct {
	Kind    Kind
	Text    string
	From    string
	To      string
	APIURL  string
	SetTo   *string
	SetFrom *string
}

// Saver persists an updated document.
type Saver interface {
	Save(doc *config.Document) error
}

// Rule is one row of the resolution table.
type Rule struct {
	Kind    Kind
	Matches func(Args) bool
}

var rules = []Rule{
	{Kind: UpdateAPIURL, Matches: func(a Args) bool { return a.API != nil }},
	{Kind: ListLanguages, Matches: func(a Args) bool { return a.List }},
	{Kind: UpdateLanguages, Matches: func(a Args) bool { return a.To != nil || a.From != nil }},
	{Kind: ShowStatus, Matches: func(a Args) bool { return a.Status }},
	{Kind: Translate, Matches: func(a Args) bool { return a.Text != nil }},
}

// Rules returns the resolution table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Match returns the kind of the first matching rule, or ok=false when no
// rule applies.
func Match(args Args) (Kind, bool) {
	for _, r := range rules {
		if r.Matches(args) {
			return r.Kind, true
		}
	}
	return 0, false
}

// Resolver applies the rule table against a configuration document.
type Resolver struct {
	saver Saver
}

// NewResolver returns a Resolver that persists updates through saver.
func NewResolver(saver Saver) *Resolver {
	return &Resolver{saver: saver}
}

// Resolve decides the action for args. UpdateAPIURL and UpdateLanguages
// are applied to doc and saved before returning.
func (r *Resolver) Resolve(args Args, doc *config.Document) (Intent, error) {
	kind, ok := Match(args)
	if !ok {
		return Intent{}, ErrMissingText
	}

	switch kind {
	case UpdateAPIURL:
		doc.SetAPIURL(*args.API)
		if err := r.saver.Save(doc); err != nil {
			return Intent{}, err
		}
		return Intent{Kind: kind, APIURL: *args.API}, nil

	case UpdateLanguages:
		if args.To != nil {
			doc.SetTo(*args.To)
		}
		if args.From != nil {
			doc.SetFrom(*args.From)
		}
		if err := r.saver.Save(doc); err != nil {
			return Intent{}, err
		}
		return Intent{Kind: kind, SetTo: args.To, SetFrom: args.From}, nil
	}

	var apiURL string
	if kind.NeedsService() {
		var err error
		if apiURL, err = requireAPIURL(doc); err != nil {
			return Intent{}, err
		}
	}

	switch kind {
	case ListLanguages:
		return Intent{Kind: kind, APIURL: apiURL}, nil
	case ShowStatus:
		return Intent{Kind: kind, From: doc.ResolvedFrom(), To: doc.ResolvedTo(), APIURL: apiURL}, nil
	default:
		return Intent{Kind: Translate, Text: *args.Text, From: doc.ResolvedFrom(), To: doc.ResolvedTo(), APIURL: apiURL}, nil
	}
}

// requireAPIURL treats a value that is empty once whitespace and trailing
// slashes are dropped as missing, matching what the client accepts.
func requireAPIURL(doc *config.Document) (string, error) {
	apiURL, ok := doc.APIURL()
	if !ok || strings.TrimRight(strings.TrimSpace(apiURL), "/") == "" {
		return "", ErrMissingAPIURL
	}
	return apiURL, nil
}
