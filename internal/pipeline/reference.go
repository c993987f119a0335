package pipeline

import (
	"strconv"

	"github.com/cesargomez89/gtstats/internal/constants"
)

// Raw reference table shapes. Category ids are positions in the car_category
// list; course ids come from the explicit index field, which older entries
// may lack.
type carMeta struct {
	Code string `json:"code"`
	Tag  string `json:"tag"`
}

type courseMeta struct {
	Code  string `json:"code"`
	Index *int64 `json:"index,omitempty"`
}

type categoryMeta struct {
	Code string `json:"code"`
}

type metaTables struct {
	Car         []carMeta      `json:"car"`
	Course      []courseMeta   `json:"course"`
	CarCategory []categoryMeta `json:"car_category"`
}

// refTables is the in-memory view of the cached reference data, loaded once
// per pipeline run with the code lookups prebuilt.
type refTables struct {
	meta             metaTables
	courseIDByCode   map[string]string
	categoryIDByCode map[string]string
}

func (p *Pipeline) loadMeta() (*refTables, error) {
	ref := &refTables{
		courseIDByCode:   make(map[string]string),
		categoryIDByCode: make(map[string]string),
	}
	if err := p.store.ReadJSON(constants.FileMeta, &ref.meta); err != nil {
		return nil, err
	}
	for _, course := range ref.meta.Course {
		if course.Index != nil {
			ref.courseIDByCode[course.Code] = strconv.FormatInt(*course.Index, 10)
		}
	}
	for i, category := range ref.meta.CarCategory {
		ref.categoryIDByCode[category.Code] = strconv.Itoa(i)
	}
	return ref, nil
}

// courseID resolves a remote course code to the local numeric index, or nil
// when there is no match.
func (r *refTables) courseID(code string) *string {
	if id, ok := r.courseIDByCode[code]; ok {
		return &id
	}
	return nil
}

// categoryID resolves a remote category code to the local index, or nil when
// there is no match.
func (r *refTables) categoryID(code string) *string {
	if id, ok := r.categoryIDByCode[code]; ok {
		return &id
	}
	return nil
}

func (p *Pipeline) loadLocalize() (map[string]string, error) {
	var localize map[string]string
	if err := p.store.ReadJSON(constants.FileLocalize, &localize); err != nil {
		return nil, err
	}
	return localize, nil
}

func (p *Pipeline) loadTags() (map[string]map[string]string, error) {
	var tags map[string]map[string]string
	if err := p.store.ReadJSON(constants.FileTags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
