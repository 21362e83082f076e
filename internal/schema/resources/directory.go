package resources

import "github.com/tastemap/console/internal/schema"

func init() {
	registerLists()
	registerHashtags()
	registerNeighborhoods()
}

func registerLists() {
	schema.Register(schema.Definition{
		Type:  "lists",
		Label: "Lists",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "description", Label: "Description", Kind: schema.InputTextarea, Editable: true},
			{Key: "hashtags", Label: "Hashtags", Kind: schema.InputTags, Editable: true},
			{Key: "is_public", Label: "Public", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate: []string{"name"},
	})
}

func registerHashtags() {
	schema.Register(schema.Definition{
		Type:  "hashtags",
		Label: "Hashtags",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "category", Label: "Category", Kind: schema.InputSelect, Editable: true, Options: []string{"cuisine", "occasion", "vibe", "dietary"}},
			{Key: "is_trending", Label: "Trending", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate: []string{"name"},
	})
}

func registerNeighborhoods() {
	schema.Register(schema.Definition{
		Type:  "neighborhoods",
		Label: "Neighborhoods",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "city_id", Label: "City", Kind: schema.InputCityRef, Editable: true, Required: true},
			{Key: "zipcodes", Label: "Zipcodes", Kind: schema.InputTags, Editable: true},
		},
		RequiredOnCreate:    []string{"name", "city_id"},
		PositiveRefOnCreate: []string{"city_id"},
	})
}
