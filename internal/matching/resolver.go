package matching

import (
	"strings"

	"hactl/internal/domain"
)

// DefaultThreshold is the minimum similarity accepted as a match.
const DefaultThreshold = 0.6

// PrefixDomain restricts resolution to Domain when a phrase starts with Prefix.
type PrefixDomain struct {
	Prefix string `yaml:"prefix"`
	Domain string `yaml:"domain"`
}

type Config struct {
	Threshold     float64        `yaml:"threshold"`
	StopWords     []string       `yaml:"stop_words"`
	PrefixDomains []PrefixDomain `yaml:"prefix_domains"`
}

func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		StopWords: []string{"the"},
		PrefixDomains: []PrefixDomain{
			{Prefix: "scene ", Domain: domain.DomainScene},
			{Prefix: "automation ", Domain: domain.DomainAutomation},
			{Prefix: "trigger ", Domain: domain.DomainAutomation},
		},
	}
}

// Match is a resolved target.
type Match struct {
	Entity domain.Entity
	Score  float64
	// PrefixDomain is set when a prefix such as "scene " restricted the search.
	PrefixDomain string
}

// Resolver finds the entity whose display name best matches a target phrase.
// It holds only configuration and is safe for concurrent use.
type Resolver struct {
	threshold float64
	stopWords map[string]struct{}
	prefixes  []PrefixDomain
}

func NewResolver(cfg Config) *Resolver {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		if w = normalize(w); w != "" {
			stop[w] = struct{}{}
		}
	}
	prefixes := make([]PrefixDomain, 0, len(cfg.PrefixDomains))
	for _, p := range cfg.PrefixDomains {
		prefix := strings.ToLower(p.Prefix)
		if strings.TrimSpace(prefix) == "" || p.Domain == "" {
			continue
		}
		prefixes = append(prefixes, PrefixDomain{Prefix: prefix, Domain: p.Domain})
	}
	return &Resolver{threshold: cfg.Threshold, stopWords: stop, prefixes: prefixes}
}

func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Clean lower-cases the phrase, removes a domain prefix and drops stop words.
// It returns the remaining phrase and the domain the prefix selected, if any.
func (r *Resolver) Clean(phrase string) (string, string) {
	p := normalize(phrase)

	var only string
	for _, pd := range r.prefixes {
		if strings.HasPrefix(p, pd.Prefix) {
			p = strings.TrimSpace(p[len(pd.Prefix):])
			only = pd.Domain
			break
		}
	}

	return r.dropStopWords(p), only
}

// dropStopWords removes stop-word tokens from an already normalized string.
func (r *Resolver) dropStopWords(p string) string {
	if len(r.stopWords) == 0 {
		return p
	}
	words := strings.Fields(p)
	kept := words[:0]
	for _, w := range words {
		if _, stop := r.stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// nameKey filters a display-name key the same way as the phrase. A name made
// only of stop words keeps its full key.
func (r *Resolver) nameKey(key string) string {
	if filtered := r.dropStopWords(key); filtered != "" {
		return filtered
	}
	return key
}

// Resolve returns the best match for phrase. A *domain.NotFoundError is returned when
// the cleaned phrase is empty, when no entity survives the prefix filter, or when the
// best score is below the threshold; in the last case it names the best candidate.
func (r *Resolver) Resolve(phrase string, idx *Index) (Match, error) {
	cleaned, only := r.Clean(phrase)
	if cleaned == "" {
		return Match{}, &domain.NotFoundError{Phrase: phrase, Available: r.candidates(idx, only)}
	}

	if e, ok := idx.Lookup(cleaned); ok && (only == "" || e.Domain() == only) {
		return Match{Entity: e, Score: 1, PrefixDomain: only}, nil
	}

	var (
		best  Match
		found bool
	)
	idx.Each(func(key string, e domain.Entity) bool {
		if only != "" && e.Domain() != only {
			return true
		}
		s := Score(cleaned, r.nameKey(key))
		if !found || s > best.Score {
			best = Match{Entity: e, Score: s, PrefixDomain: only}
			found = true
		}
		return true
	})

	if !found {
		return Match{}, &domain.NotFoundError{Phrase: cleaned}
	}
	if best.Score < r.threshold {
		return Match{}, &domain.NotFoundError{
			Phrase:     cleaned,
			Suggestion: best.Entity.Name,
			Score:      best.Score,
			Available:  r.candidates(idx, only),
		}
	}
	return best, nil
}

func (r *Resolver) candidates(idx *Index, only string) []string {
	var names []string
	idx.Each(func(_ string, e domain.Entity) bool {
		if only == "" || e.Domain() == only {
			names = append(names, e.Name)
		}
		return true
	})
	return names
}
