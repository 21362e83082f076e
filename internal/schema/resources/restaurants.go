package resources

import "github.com/tastemap/console/internal/schema"

func init() {
	registerRestaurants()
	registerDishes()
}

func registerRestaurants() {
	schema.Register(schema.Definition{
		Type:  "restaurants",
		Label: "Restaurants",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "address", Label: "Address", Kind: schema.InputAddress, Editable: true},
			{Key: "zipcode", Label: "Zipcode", Kind: schema.InputText, Editable: true},
			{Key: "city_id", Label: "City", Kind: schema.InputCityRef, Editable: true},
			{Key: "city_name", Label: "City Name", Kind: schema.InputText, Editable: true},
			{Key: "neighborhood_id", Label: "Neighborhood", Kind: schema.InputNeighborhoodRef, Editable: true},
			{Key: "neighborhood_name", Label: "Neighborhood Name", Kind: schema.InputText, Editable: true},
			{Key: "phone", Label: "Phone", Kind: schema.InputText, Editable: true},
			{Key: "website", Label: "Website", Kind: schema.InputText, Editable: true},
			{Key: "instagram", Label: "Instagram", Kind: schema.InputText, Editable: true},
			{Key: "price_range", Label: "Price", Kind: schema.InputSelect, Editable: true, Options: []string{"$", "$$", "$$$", "$$$$"}},
			{Key: "tags", Label: "Tags", Kind: schema.InputTags, Editable: true},
			{Key: "notes", Label: "Notes", Kind: schema.InputTextarea, Editable: true},
			{Key: "is_active", Label: "Active", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate: []string{"name"},
	})
}

func registerDishes() {
	schema.Register(schema.Definition{
		Type:  "dishes",
		Label: "Dishes",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "restaurant_id", Label: "Restaurant", Kind: schema.InputNumber, Editable: true, Required: true},
			{Key: "description", Label: "Description", Kind: schema.InputTextarea, Editable: true},
			{Key: "price", Label: "Price", Kind: schema.InputNumber, Editable: true},
			{Key: "tags", Label: "Tags", Kind: schema.InputTags, Editable: true},
			{Key: "is_featured", Label: "Featured", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate:    []string{"name", "restaurant_id"},
		PositiveRefOnCreate: []string{"restaurant_id"},
	})
}
