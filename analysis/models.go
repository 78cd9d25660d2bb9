package analysis

// Models
const (
	DefaultModel = ModelFlash
	ModelFlash   = "gemini-2.5-flash"
	ModelPro     = "gemini-3-pro-preview"
)

// Model represents a reasoning engine
type Model struct {
	Description string `json:"description"`
	Name        string `json:"name"`
}

// Models lists the reasoning engines that can be selected
var Models = []Model{
	{
		Description: "Fast clinical summary.",
		Name:        ModelFlash,
	},
	{
		Description: "The Pro model provides deeper clinical correlation.",
		Name:        ModelPro,
	},
}

// IsModel checks whether the name is a known reasoning engine
func IsModel(name string) bool {
	for _, m := range Models {
		if m.Name == name {
			return true
		}
	}
	return false
}
