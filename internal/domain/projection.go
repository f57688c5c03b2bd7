package domain

import "encoding/json"

// ListState is the view state of the catalog grid. Each source has its own
// loading flag; the grid is renderable once all three have loaded.
type ListState struct {
	Items            []CatalogItem `json:"items"`
	Favorites        AnnotationSet `json:"favorites"`
	Dislikes         AnnotationSet `json:"dislikes"`
	Loading          bool          `json:"loading"`
	LoadingFavorites bool          `json:"loading_favorites"`
	LoadingDislikes  bool          `json:"loading_dislikes"`
	CatalogError     string        `json:"catalog_error,omitempty"`
}

// Ready reports whether the catalog and both annotation snapshots have arrived.
func (s ListState) Ready() bool {
	return !s.Loading && !s.LoadingFavorites && !s.LoadingDislikes
}

// Set returns the annotation set for kind.
func (s ListState) Set(kind AnnotationKind) AnnotationSet {
	if kind == AnnotationDislike {
		return s.Dislikes
	}
	return s.Favorites
}

// Loaded reports whether the first snapshot of kind has arrived.
func (s ListState) Loaded(kind AnnotationKind) bool {
	if kind == AnnotationDislike {
		return !s.LoadingDislikes
	}
	return !s.LoadingFavorites
}

// WithSet returns a copy of the state with the set for kind replaced.
func (s ListState) WithSet(kind AnnotationKind, set AnnotationSet) ListState {
	if kind == AnnotationDislike {
		s.Dislikes = set
	} else {
		s.Favorites = set
	}
	return s
}

// WithSnapshot replaces the set for kind and marks that source as loaded.
func (s ListState) WithSnapshot(kind AnnotationKind, set AnnotationSet) ListState {
	s = s.WithSet(kind, set)
	if kind == AnnotationDislike {
		s.LoadingDislikes = false
	} else {
		s.LoadingFavorites = false
	}
	return s
}

// ListRow is one rendered grid cell.
type ListRow struct {
	CatalogItem
	Favorite bool `json:"favorite"`
	Disliked bool `json:"disliked"`
}

// Rows joins the catalog with both annotation sets.
func (s ListState) Rows() []ListRow {
	rows := make([]ListRow, 0, len(s.Items))
	for _, item := range s.Items {
		rows = append(rows, ListRow{
			CatalogItem: item,
			Favorite:    s.Favorites.Has(item.Name),
			Disliked:    s.Dislikes.Has(item.Name),
		})
	}
	return rows
}

// DetailState is the view state of a single catalog subject.
type DetailState struct {
	Name     string       `json:"name"`
	Item     *CatalogItem `json:"item,omitempty"`
	Favorite *Annotation  `json:"favorite,omitempty"`
	Dislike  *Annotation  `json:"dislike,omitempty"`
	Loading  bool         `json:"loading"`
	Error    string       `json:"error,omitempty"`
}

// Annotation returns the current annotation of kind, or nil.
func (s DetailState) Annotation(kind AnnotationKind) *Annotation {
	if kind == AnnotationDislike {
		return s.Dislike
	}
	return s.Favorite
}

// WithAnnotation returns a copy with the annotation of kind replaced.
func (s DetailState) WithAnnotation(kind AnnotationKind, a *Annotation) DetailState {
	if kind == AnnotationDislike {
		s.Dislike = a
	} else {
		s.Favorite = a
	}
	return s
}

// MarshalJSON encodes the set as its ordered list of annotations.
func (s AnnotationSet) MarshalJSON() ([]byte, error) {
	items := s.order
	if items == nil {
		items = []*Annotation{}
	}
	return json.Marshal(items)
}
