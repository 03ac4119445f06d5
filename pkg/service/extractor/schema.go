package extractor

import (
	"github.com/m-mizutani/gollem"

	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// responseSchema declares the structured output shape of the extraction
// call: {new: NewMemory[], updates: {id, observation}[], deletes: id[]}
func responseSchema() *gollem.Parameter {
	entityTypes := make([]string, 0, len(types.AllEntityTypes()))
	for _, et := range types.AllEntityTypes() {
		entityTypes = append(entityTypes, et.String())
	}
	scopes := make([]string, 0, len(types.AllMemoryScopes()))
	for _, s := range types.AllMemoryScopes() {
		scopes = append(scopes, s.String())
	}

	return &gollem.Parameter{
		Type:        gollem.TypeObject,
		Title:       "MemoryExtractionResult",
		Description: "Memory changes derived from the conversation",
		Properties: map[string]*gollem.Parameter{
			"new": {
				Type:        gollem.TypeArray,
				Description: "Genuinely new facts not present in the existing memories",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"entity_type": {
							Type:        gollem.TypeString,
							Description: "Category of the fact",
							Enum:        entityTypes,
							Required:    true,
						},
						"entity_name": {
							Type:        gollem.TypeString,
							Description: "Short name of what the fact is about",
							Required:    true,
						},
						"observation": {
							Type:        gollem.TypeString,
							Description: "The fact itself, one sentence",
							Required:    true,
						},
						"scope": {
							Type:        gollem.TypeString,
							Description: "Where the fact applies",
							Enum:        scopes,
							Required:    true,
						},
					},
				},
			},
			"updates": {
				Type:        gollem.TypeArray,
				Description: "Corrections to existing memories, referenced by id",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"id": {
							Type:        gollem.TypeString,
							Description: "ID of the existing memory to correct",
							Required:    true,
						},
						"observation": {
							Type:        gollem.TypeString,
							Description: "The corrected fact",
							Required:    true,
						},
					},
				},
			},
			"deletes": {
				Type:        gollem.TypeArray,
				Description: "IDs of existing memories that are stale or that the user asked to forget",
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
				Required: true,
			},
		},
	}
}
