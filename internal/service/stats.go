package service

import "github.com/jsfong/model-parser/internal/models"

// ComputeStats counts the elements and relationships of a model by type and
// by nature. Identity fields and versions are left for the caller.
func ComputeStats(m *models.Model) *models.ModelStats {
	st := &models.ModelStats{
		ElementsCount:         len(m.Elements),
		RelationshipsCount:    len(m.Relationships),
		CountsByType:          make(map[string]int),
		CountsByNature:        make(map[string]int),
		RelationshipsByType:   make(map[string]int),
		RelationshipsByNature: make(map[string]int),
	}

	for i := range m.Elements {
		st.CountsByType[m.Elements[i].Type]++
		st.CountsByNature[m.Elements[i].Nature]++
	}

	for i := range m.Relationships {
		st.RelationshipsByType[m.Relationships[i].Type]++
		st.RelationshipsByNature[m.Relationships[i].Nature]++
	}

	return st
}
