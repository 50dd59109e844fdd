// Package stubserver implements a local stand-in for the EAC assistant backend.
// It answers from a fixed factsheet so the client can be run without the
// retrieval service.
package stubserver

import "strings"

// Fact is one factsheet entry
type Fact struct {
	Keyword string
	Answer  string
	Source  string
}

const (
	factsheetSource = "Official EAC Factsheet"

	// ContextDirectLookup marks answers served straight from the factsheet
	ContextDirectLookup = "Direct Look-up"

	// FallbackAnswer is returned for questions the factsheet does not cover
	FallbackAnswer = "I can only answer factsheet questions here. Try asking about the headquarters, members, founding date, motto or the Secretary General."
)

// Factsheet is an ordered keyword table. The first keyword found in the
// lowercased question wins.
type Factsheet struct {
	facts []Fact
}

// DefaultFactsheet returns the built-in EAC facts
func DefaultFactsheet() *Factsheet {
	return NewFactsheet([]Fact{
		{
			Keyword: "headquarters",
			Answer:  "The Headquarters of the East African Community (EAC) is located in Arusha, United Republic of Tanzania.",
			Source:  factsheetSource,
		},
		{
			Keyword: "members",
			Answer:  "The EAC Partner States are: Republic of Burundi, Democratic Republic of the Congo, Republic of Kenya, Republic of Rwanda, Federal Republic of Somalia, Republic of South Sudan, United Republic of Tanzania, and Republic of Uganda.",
			Source:  factsheetSource,
		},
		{
			Keyword: "founded",
			Answer:  "The EAC was originally founded in 1967, collapsed in 1977, and was officially revived on 7 July 2000.",
			Source:  factsheetSource,
		},
		{
			Keyword: "motto",
			Answer:  "The motto of the EAC is 'One People, One Destiny'.",
			Source:  factsheetSource,
		},
		{
			Keyword: "secretary general",
			Answer:  "The Secretary General is the principal executive officer of the Community.",
			Source:  factsheetSource,
		},
	})
}

// NewFactsheet builds a factsheet; keywords are matched lowercased
func NewFactsheet(facts []Fact) *Factsheet {
	fs := &Factsheet{facts: make([]Fact, 0, len(facts))}
	for _, f := range facts {
		f.Keyword = strings.ToLower(strings.TrimSpace(f.Keyword))
		if f.Keyword == "" {
			continue
		}
		fs.facts = append(fs.facts, f)
	}
	return fs
}

// Lookup finds the first fact whose keyword occurs in the question
func (fs *Factsheet) Lookup(question string) (Fact, bool) {
	q := strings.ToLower(question)
	for _, f := range fs.facts {
		if strings.Contains(q, f.Keyword) {
			return f, true
		}
	}
	return Fact{}, false
}

// Keywords lists the keywords in match order
func (fs *Factsheet) Keywords() []string {
	out := make([]string, len(fs.facts))
	for i, f := range fs.facts {
		out[i] = f.Keyword
	}
	return out
}
