package construct

import "github.com/Rxcthefirst/RdfMapper-sub000/rdf"

// graph is the in-memory store of aggregated mode. Subjects keep the order
// in which they were first seen.
type graph struct {
	dedup      bool
	order      []string
	subjects   map[string]*subjectEntry
	seen       map[string]struct{}
	size       int
	duplicates int
}

type subjectEntry struct {
	firstRow int
	triples  []emitted
	mapped   map[string]struct{}
}

func newGraph(dedup bool) *graph {
	g := &graph{dedup: dedup, subjects: make(map[string]*subjectEntry)}
	if dedup {
		g.seen = make(map[string]struct{})
	}
	return g
}

func (g *graph) entry(subject string, row int) *subjectEntry {
	e, ok := g.subjects[subject]
	if !ok {
		e = &subjectEntry{firstRow: row, mapped: make(map[string]struct{})}
		g.subjects[subject] = e
		g.order = append(g.order, subject)
	}
	return e
}

// add merges a row into the graph and returns the number of new triples.
func (g *graph) add(out *rowOutput) int {
	added := 0
	for _, t := range out.triples {
		if g.dedup {
			key := t.Key()
			if _, dup := g.seen[key]; dup {
				g.duplicates++
				continue
			}
			g.seen[key] = struct{}{}
		}
		e := g.entry(string(t.Subject), out.row)
		e.triples = append(e.triples, t)
		added++
	}
	for subject, preds := range out.mapped {
		e := g.entry(subject, out.row)
		for p := range preds {
			e.mapped[p] = struct{}{}
		}
	}
	g.size += added
	return added
}

// counts returns the number of mapped values per predicate.
func (e *subjectEntry) counts() map[string]int {
	out := make(map[string]int)
	for _, t := range e.triples {
		if t.origin == originMapped {
			out[string(t.Predicate)]++
		}
	}
	return out
}

// each visits subjects in first-seen order.
func (g *graph) each(fn func(subject string, e *subjectEntry) error) error {
	for _, s := range g.order {
		if err := fn(s, g.subjects[s]); err != nil {
			return err
		}
	}
	return nil
}

func (g *graph) reset() {
	g.order = nil
	g.subjects = make(map[string]*subjectEntry)
	g.seen = nil
	g.size = 0
}

func plain(ts []emitted) []rdf.Triple {
	out := make([]rdf.Triple, len(ts))
	for i, t := range ts {
		out[i] = t.Triple
	}
	return out
}
