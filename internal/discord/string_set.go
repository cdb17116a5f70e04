package discord

// stringSet is a simple map-based set of unique strings, used for role
// ID arithmetic in the class menu.
type stringSet struct {
	backingMap map[string]struct{}
}

func newStringSet(s []string) *stringSet {
	set := &stringSet{make(map[string]struct{}, len(s))}
	for _, v := range s {
		set.backingMap[v] = struct{}{}
	}
	return set
}

func (s *stringSet) Contains(v string) bool {
	_, exists := s.backingMap[v]
	return exists
}

// Difference returns a new set holding the values of s not in other.
func (s *stringSet) Difference(other *stringSet) *stringSet {
	d := &stringSet{make(map[string]struct{}, len(s.backingMap))}
	for v := range s.backingMap {
		if !other.Contains(v) {
			d.backingMap[v] = struct{}{}
		}
	}
	return d
}

// Union returns a new set holding the values of both s and other.
func (s *stringSet) Union(other *stringSet) *stringSet {
	u := &stringSet{make(map[string]struct{}, len(s.backingMap)+len(other.backingMap))}
	for v := range s.backingMap {
		u.backingMap[v] = struct{}{}
	}
	for v := range other.backingMap {
		u.backingMap[v] = struct{}{}
	}
	return u
}

// Values returns the values contained by this stringSet as a slice.
func (s *stringSet) Values() []string {
	v := make([]string, 0, len(s.backingMap))
	for k := range s.backingMap {
		v = append(v, k)
	}

	return v
}
