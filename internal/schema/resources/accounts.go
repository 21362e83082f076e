package resources

import "github.com/tastemap/console/internal/schema"

func init() {
	registerUsers()
	registerSubmissions()
}

func registerUsers() {
	schema.Register(schema.Definition{
		Type:  "users",
		Label: "Users",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "username", Label: "Username", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "email", Label: "Email", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "password", Label: "Password", Kind: schema.InputText, Editable: true},
			{Key: "role", Label: "Role", Kind: schema.InputSelect, Editable: true, Options: []string{"admin", "editor", "member"}},
			{Key: "is_verified", Label: "Verified", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate: []string{"username", "email", "password"},
	})
}

func registerSubmissions() {
	schema.Register(schema.Definition{
		Type:  "submissions",
		Label: "Submissions",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "restaurant_name", Label: "Restaurant", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "dish_name", Label: "Dish", Kind: schema.InputText, Editable: true},
			{Key: "address", Label: "Address", Kind: schema.InputAddress, Editable: true},
			{Key: "city_id", Label: "City", Kind: schema.InputCityRef, Editable: true},
			{Key: "city_name", Label: "City Name", Kind: schema.InputText, Editable: true},
			{Key: "neighborhood_id", Label: "Neighborhood", Kind: schema.InputNeighborhoodRef, Editable: true},
			{Key: "neighborhood_name", Label: "Neighborhood Name", Kind: schema.InputText, Editable: true},
			{Key: "notes", Label: "Notes", Kind: schema.InputTextarea, Editable: true},
			{Key: "status", Label: "Status", Kind: schema.InputSelect, Options: []string{"pending", "approved", "rejected"}},
		},
		RequiredOnCreate: []string{"restaurant_name"},
		Reviewable:       true,
	})
}
