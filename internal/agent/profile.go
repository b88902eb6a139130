package agent

import (
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
)

// TraitSuggestions are offered when editing traits.
var TraitSuggestions = []string{
	"Analytical",
	"Creative",
	"Detail-oriented",
	"Empathetic",
	"Strategic",
	"Technical",
	"Persuasive",
	"Resourceful",
}

// Profile is the editable, non-credential part of an agent.
type Profile struct {
	Name    string   `json:"name" yaml:"name"`
	Bio     []string `json:"bio" yaml:"bio"`
	Twitter string   `json:"twitter" yaml:"twitter"`
	Traits  []string `json:"traits" yaml:"traits"`
}

// AddBio appends a trimmed bio sentence; blank input is ignored.
func (p *Profile) AddBio(sentence string) bool {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return false
	}
	p.Bio = append(p.Bio, sentence)
	return true
}

// RemoveBio removes the sentence at index.
func (p *Profile) RemoveBio(index int) bool {
	if index < 0 || index >= len(p.Bio) {
		return false
	}
	p.Bio = append(p.Bio[:index:index], p.Bio[index+1:]...)
	return true
}

// AddTrait appends a trimmed trait unless it is blank or already present.
func (p *Profile) AddTrait(trait string) bool {
	trait = strings.TrimSpace(trait)
	if trait == "" || p.HasTrait(trait) {
		return false
	}
	p.Traits = append(p.Traits, trait)
	return true
}

// RemoveTrait removes every occurrence of trait.
func (p *Profile) RemoveTrait(trait string) bool {
	removed := false
	kept := p.Traits[:0:0]
	for _, t := range p.Traits {
		if t == trait {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	p.Traits = kept
	return removed
}

// HasTrait reports whether trait is present.
func (p *Profile) HasTrait(trait string) bool {
	for _, t := range p.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// ProfileOf extracts the profile fields of a backend agent.
func ProfileOf(a *sdk.Agent) Profile {
	return Profile{
		Name:    a.AgentName,
		Bio:     append([]string(nil), a.AgentBio...),
		Twitter: a.AgentTwitter,
		Traits:  append([]string(nil), a.Traits...),
	}
}
