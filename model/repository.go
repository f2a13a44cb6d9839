package model

import (
	"encoding/json"
	"sort"
	"time"
)

// RepoDescriptor is the repository metadata returned by the repository lister
type RepoDescriptor struct {
	Name            string    `json:"name"`
	Owner           string    `json:"owner"`
	PrimaryLanguage string    `json:"primaryLanguage,omitempty"` // empty when github could not detect one
	Size            int       `json:"size"`                      // in KB, 0 for empty repositories
	PushedAt        time.Time `json:"pushedAt"`                  // zero when unknown
	IsFork          bool      `json:"isFork"`
}

// FullName returns owner/name
func (r RepoDescriptor) FullName() string {
	return r.Owner + "/" + r.Name
}

// LanguageBreakdown maps a language name to its byte count in one repository
type LanguageBreakdown map[string]int

// TotalBytes sums all byte counts of the breakdown
func (l LanguageBreakdown) TotalBytes() int {
	total := 0
	for _, bytes := range l {
		total += bytes
	}

	return total
}

// FrameworkSet is a duplicate-free set of framework or tool names
type FrameworkSet map[string]struct{}

// NewFrameworkSet creates a set from the given names
func NewFrameworkSet(names ...string) FrameworkSet {
	set := make(FrameworkSet, len(names))
	for _, name := range names {
		set.Add(name)
	}

	return set
}

func (f FrameworkSet) Add(name string) {
	if name != "" {
		f[name] = struct{}{}
	}
}

func (f FrameworkSet) Has(name string) bool {
	_, found := f[name]
	return found
}

// Merge adds every name of other into the set
func (f FrameworkSet) Merge(other FrameworkSet) {
	for name := range other {
		f[name] = struct{}{}
	}
}

// Sorted returns the names in alphabetical order
func (f FrameworkSet) Sorted() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// MarshalJSON outputs the set as a sorted array
func (f FrameworkSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Sorted())
}

// UnmarshalJSON reads the set from an array
func (f *FrameworkSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}

	*f = NewFrameworkSet(names...)
	return nil
}
