package vtscreen

// Hyperlink is an interned OSC 8 hyperlink record.
type Hyperlink struct {
	ID  string // explicit id parameter from OSC 8, may be empty
	URI string
}

// HyperlinkStorage interns hyperlink records so cells and trivial lines can
// reference them by a compact HyperlinkID. Records persist for the session;
// they are only dropped by an explicit Reset (hard reset / RIS), never while
// cells may still reference them.
type HyperlinkStorage struct {
	byID   map[HyperlinkID]*Hyperlink
	byKey  map[string]HyperlinkID
	nextID HyperlinkID
}

// NewHyperlinkStorage creates an empty hyperlink store.
func NewHyperlinkStorage() *HyperlinkStorage {
	return &HyperlinkStorage{
		byID:  make(map[HyperlinkID]*Hyperlink),
		byKey: make(map[string]HyperlinkID),
	}
}

// Intern returns the id for the given (id, uri) pair, creating a record if
// none exists yet. Links sharing an explicit id parameter are folded into
// one record, matching how terminals join split hyperlink spans.
func (s *HyperlinkStorage) Intern(id, uri string) HyperlinkID {
	if uri == "" {
		return 0
	}

	key := uri
	if id != "" {
		key = "id:" + id
	}

	if existing, ok := s.byKey[key]; ok {
		return existing
	}

	s.nextID++
	s.byID[s.nextID] = &Hyperlink{ID: id, URI: uri}
	s.byKey[key] = s.nextID
	return s.nextID
}

// Lookup returns the record for the given id, or nil for the zero id and
// unknown ids.
func (s *HyperlinkStorage) Lookup(id HyperlinkID) *Hyperlink {
	if id == 0 {
		return nil
	}
	return s.byID[id]
}

// Count returns the number of interned records.
func (s *HyperlinkStorage) Count() int {
	return len(s.byID)
}

// Reset drops every record. Callers must ensure no live cell still holds an
// id, which in practice means resetting the screens in the same operation.
func (s *HyperlinkStorage) Reset() {
	s.byID = make(map[HyperlinkID]*Hyperlink)
	s.byKey = make(map[string]HyperlinkID)
	s.nextID = 0
}
